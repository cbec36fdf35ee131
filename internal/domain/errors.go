package domain

import (
	"context"
	"errors"
	"fmt"
)

// Backend failure sentinels. Adapters wrap one of these with %w so callers
// can classify with errors.Is.
var (
	ErrAuth             = errors.New("authentication failed")
	ErrNetwork          = errors.New("network error")
	ErrTimeout          = errors.New("backend timed out")
	ErrModelUnavailable = errors.New("model unavailable")
)

// Parse failure sentinels.
var (
	ErrNoCommand = errors.New("no command in response")
	ErrRefusal   = errors.New("backend refused or asked for clarification")
)

// Other sentinels.
var (
	ErrBackendNotFound = errors.New("backend not configured")
	ErrNoBackends      = errors.New("no backend available")
	ErrConfigLoad      = errors.New("failed to load configuration")
)

// BackendError attaches the backend name to an underlying failure.
type BackendError struct {
	Backend string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Backend, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// NewBackendError wraps err with the backend name. Returns nil for a nil err.
func NewBackendError(backend string, err error) error {
	if err == nil {
		return nil
	}
	var be *BackendError
	if errors.As(err, &be) && be.Backend == backend {
		return err
	}
	return &BackendError{Backend: backend, Err: err}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil.
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// FailureKind classifies why a backend call did not yield a usable suggestion.
type FailureKind string

const (
	FailureNone             FailureKind = ""
	FailureAuth             FailureKind = "auth"
	FailureNetwork          FailureKind = "network"
	FailureTimeout          FailureKind = "timeout"
	FailureModelUnavailable FailureKind = "model_unavailable"
	FailureLowConfidence    FailureKind = "low_confidence"
	FailureCancelled        FailureKind = "cancelled"
)

// Retryable reports whether a single same-backend retry is allowed.
func (k FailureKind) Retryable() bool {
	return k == FailureNetwork || k == FailureTimeout
}

// FailureKindOf maps an error onto the backend failure taxonomy. Errors that
// match no sentinel are treated as transient network failures.
func FailureKindOf(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, context.Canceled):
		return FailureCancelled
	case errors.Is(err, ErrAuth):
		return FailureAuth
	case errors.Is(err, ErrModelUnavailable):
		return FailureModelUnavailable
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	default:
		return FailureNetwork
	}
}
