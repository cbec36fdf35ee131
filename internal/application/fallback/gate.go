package fallback

import (
	"strings"

	"github.com/doeshing/nlsh/internal/domain"
)

// QualityGate decides whether a parsed suggestion is good enough to show,
// or whether the turn should escalate to another backend instead.
type QualityGate interface {
	Accept(kind domain.BackendKind, suggestion domain.CommandSuggestion) bool
}

// AcceptAll never escalates on quality.
type AcceptAll struct{}

func (AcceptAll) Accept(domain.BackendKind, domain.CommandSuggestion) bool { return true }

// ConfidenceGate rejects local suggestions whose self-reported confidence is
// below Threshold. Cloud suggestions and suggestions without a score pass.
type ConfidenceGate struct {
	Threshold float64
}

func (g ConfidenceGate) Accept(kind domain.BackendKind, suggestion domain.CommandSuggestion) bool {
	if kind != domain.BackendLocal || suggestion.Confidence == nil {
		return true
	}
	return *suggestion.Confidence >= g.Threshold
}

// GateFromConfig builds the gate named by fallback.policy.
func GateFromConfig(cfg domain.Config) QualityGate {
	switch strings.ToLower(strings.TrimSpace(cfg.Fallback.Policy)) {
	case "confidence":
		return ConfidenceGate{Threshold: cfg.GetMinConfidence()}
	default:
		return AcceptAll{}
	}
}
