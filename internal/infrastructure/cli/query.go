package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/doeshing/nlsh/internal/domain"
)

// ExitError carries the process exit status of a single-query run. The
// outcome has already been rendered, so callers should exit quietly.
type ExitError struct {
	Code    int
	Outcome domain.PipelineOutcome
}

func (e *ExitError) Error() string {
	return e.Outcome.Summary()
}

// runQuery runs one turn; Ctrl-C cancels it.
func runQuery(ctx context.Context, s *session, utterance string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	outcome, err := s.runTurn(ctx, utterance)
	if err != nil {
		return err
	}
	return exitErrorFor(outcome)
}

func (s *session) runTurn(ctx context.Context, utterance string) (domain.PipelineOutcome, error) {
	ctrl, err := s.Controller(ctx)
	if err != nil {
		return domain.PipelineOutcome{}, err
	}
	outcome := ctrl.RunTurn(ctx, utterance)
	s.renderer.Outcome(outcome)
	return outcome, nil
}

// runFix re-enters error recovery for the last failed command.
func (s *session) runFix(ctx context.Context) error {
	ctrl, err := s.Controller(ctx)
	if err != nil {
		return err
	}
	outcome, ok := ctrl.RetryLastFailure(ctx)
	if !ok {
		fmt.Fprintln(s.opts.Stdout, s.styles.Dim.Render("nothing to fix"))
		return nil
	}
	s.renderer.Outcome(outcome)
	return nil
}

// exitErrorFor maps an outcome onto a process status: the command's own
// status when something ran, 130 for an interrupt and 1 otherwise.
func exitErrorFor(outcome domain.PipelineOutcome) error {
	switch outcome.Kind {
	case domain.OutcomeExecuted:
		if outcome.ExitCode == 0 {
			return nil
		}
		return &ExitError{Code: outcome.ExitCode, Outcome: outcome}
	case domain.OutcomeFailed:
		code := outcome.ExitCode
		if code <= 0 {
			code = 1
		}
		return &ExitError{Code: code, Outcome: outcome}
	case domain.OutcomeCancelled:
		return &ExitError{Code: 130, Outcome: outcome}
	case domain.OutcomeDeclined, domain.OutcomeParseFailed, domain.OutcomeBackendUnavailable:
		return &ExitError{Code: 1, Outcome: outcome}
	default:
		return fmt.Errorf("turn ended without an outcome")
	}
}
