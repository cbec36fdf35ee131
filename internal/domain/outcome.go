package domain

import "fmt"

// OutcomeKind names the terminal state of one pipeline turn.
type OutcomeKind string

const (
	OutcomeExecuted           OutcomeKind = "executed"
	OutcomeDeclined           OutcomeKind = "declined"
	OutcomeParseFailed        OutcomeKind = "parse_failed"
	OutcomeBackendUnavailable OutcomeKind = "backend_unavailable"
	OutcomeFailed             OutcomeKind = "failed"
	OutcomeCancelled          OutcomeKind = "cancelled"
)

// PipelineOutcome is the single result produced per turn.
type PipelineOutcome struct {
	Kind   OutcomeKind
	TurnID string
	// Backend is the backend that produced the last suggestion (or failed last).
	Backend    string
	Suggestion *CommandSuggestion
	Risk       RiskAssessment
	ExitCode   int
	Stderr     string
	Reason     string
	Err        error
	// FailureKind is set for BackendUnavailable outcomes.
	FailureKind FailureKind
	// PriorFailure is the execution failure that triggered recovery, if any.
	PriorFailure *FailureContext
	Recovered    bool
	Escalated    bool
}

// Executed reports a command that ran to completion.
func Executed(exitCode int) PipelineOutcome {
	return PipelineOutcome{Kind: OutcomeExecuted, ExitCode: exitCode}
}

// Declined reports that the user said no; nothing ran.
func Declined() PipelineOutcome {
	return PipelineOutcome{Kind: OutcomeDeclined, Reason: "declined by user"}
}

// ParseFailed reports a backend response that held no usable command.
func ParseFailed(reason string) PipelineOutcome {
	return PipelineOutcome{Kind: OutcomeParseFailed, Reason: reason}
}

// BackendUnavailable reports that no backend could produce a response.
func BackendUnavailable(reason string) PipelineOutcome {
	return PipelineOutcome{Kind: OutcomeBackendUnavailable, Reason: reason}
}

// Failed reports a command that still exited non-zero after recovery.
func Failed(exitCode int, stderr string) PipelineOutcome {
	return PipelineOutcome{
		Kind:     OutcomeFailed,
		ExitCode: exitCode,
		Stderr:   stderr,
		Reason:   fmt.Sprintf("command exited with status %d", exitCode),
	}
}

// Cancelled reports a turn interrupted by the user.
func Cancelled(reason string) PipelineOutcome {
	return PipelineOutcome{Kind: OutcomeCancelled, Reason: reason}
}

// Terminal reports whether the outcome carries one of the known kinds.
func (o PipelineOutcome) Terminal() bool {
	switch o.Kind {
	case OutcomeExecuted, OutcomeDeclined, OutcomeParseFailed,
		OutcomeBackendUnavailable, OutcomeFailed, OutcomeCancelled:
		return true
	default:
		return false
	}
}

// Summary is a one-line human description.
func (o PipelineOutcome) Summary() string {
	switch o.Kind {
	case OutcomeExecuted:
		return fmt.Sprintf("executed (exit %d)", o.ExitCode)
	case OutcomeFailed:
		return fmt.Sprintf("failed (exit %d)", o.ExitCode)
	case OutcomeBackendUnavailable:
		if o.Backend != "" {
			return fmt.Sprintf("backend unavailable (%s): %s", o.Backend, o.Reason)
		}
		return "backend unavailable: " + o.Reason
	default:
		if o.Reason == "" {
			return string(o.Kind)
		}
		return fmt.Sprintf("%s: %s", o.Kind, o.Reason)
	}
}
