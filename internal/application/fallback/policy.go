// Package fallback decides which backend serves a turn after a failure.
package fallback

import (
	"fmt"
	"sync"

	"github.com/doeshing/nlsh/internal/domain"
)

// Policy picks the next backend after kind failed on current.
// attempted lists backends already tried this turn.
type Policy interface {
	ChooseBackend(current string, kind domain.FailureKind, attempted []string) domain.BackendSelection
}

// OrderedPolicy walks a fixed preference order. Backends that failed
// authentication are disabled for the rest of the session.
type OrderedPolicy struct {
	order []string

	mu       sync.Mutex
	disabled map[string]string
}

// NewOrderedPolicy creates a policy over order (default backend first).
func NewOrderedPolicy(order []string) *OrderedPolicy {
	return &OrderedPolicy{
		order:    append([]string(nil), order...),
		disabled: make(map[string]string),
	}
}

// Order returns the configured preference order.
func (p *OrderedPolicy) Order() []string {
	return append([]string(nil), p.order...)
}

// Primary returns the first backend that is still enabled.
func (p *OrderedPolicy) Primary() domain.BackendSelection {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, name := range p.order {
		if _, off := p.disabled[name]; !off {
			return domain.BackendSelection{Backend: name, OK: true, Reason: "preferred backend"}
		}
	}
	return domain.BackendSelection{Reason: p.exhaustedReasonLocked()}
}

// Disable removes name from consideration for the session.
func (p *OrderedPolicy) Disable(name, reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disabled[name] = reason
}

// Disabled reports whether name was disabled.
func (p *OrderedPolicy) Disabled(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, off := p.disabled[name]
	return off
}

// ChooseBackend returns the first backend in order that is neither current,
// attempted nor disabled. The result depends only on its inputs and the
// disabled set.
func (p *OrderedPolicy) ChooseBackend(current string, kind domain.FailureKind, attempted []string) domain.BackendSelection {
	if !Escalates(kind) {
		return domain.BackendSelection{Reason: fmt.Sprintf("%s failures do not escalate", kindLabel(kind))}
	}

	tried := make(map[string]bool, len(attempted)+1)
	tried[current] = true
	for _, name := range attempted {
		tried[name] = true
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, name := range p.order {
		if tried[name] {
			continue
		}
		if _, off := p.disabled[name]; off {
			continue
		}
		return domain.BackendSelection{
			Backend: name,
			OK:      true,
			Reason:  fmt.Sprintf("escalating from %s after %s failure", current, kindLabel(kind)),
		}
	}
	return domain.BackendSelection{Reason: p.exhaustedReasonLocked()}
}

func (p *OrderedPolicy) exhaustedReasonLocked() string {
	if len(p.order) == 0 {
		return "no backends configured"
	}
	return "no remaining backend in preference order"
}

// Escalates reports whether a failure kind may move the turn to another backend.
func Escalates(kind domain.FailureKind) bool {
	switch kind {
	case domain.FailureAuth, domain.FailureNetwork, domain.FailureTimeout,
		domain.FailureModelUnavailable, domain.FailureLowConfidence:
		return true
	default:
		return false
	}
}

func kindLabel(kind domain.FailureKind) string {
	if kind == domain.FailureNone {
		return "no"
	}
	return string(kind)
}
