package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doeshing/nlsh/internal/application/parser"
	"github.com/doeshing/nlsh/internal/domain"
	"github.com/doeshing/nlsh/internal/ports"
)

// generate prompts the current backend and parses its reply. Backend
// failures are retried or escalated here; a parse failure ends the turn.
func (c *Controller) generate(ctx context.Context, t *turn) state {
	backend, err := c.backendFor(t.backend)
	if err != nil {
		return c.handleBackendFailure(ctx, t, err)
	}

	text, err := c.deps.Prompts.Build(t.request)
	if err != nil {
		return t.finish(domain.PipelineOutcome{
			Kind:   domain.OutcomeParseFailed,
			Reason: err.Error(),
			Err:    err,
		})
	}

	recovery := t.request.Failure != nil
	if c.deps.Observer != nil {
		c.deps.Observer.GenerationStarted(t.backend, recovery)
	}
	raw, err := backend.Generate(ctx, ports.GenerateRequest{Prompt: text, Shell: t.request.Shell})
	if c.deps.Observer != nil {
		c.deps.Observer.GenerationFinished(t.backend, err)
	}
	if err != nil {
		return c.handleBackendFailure(ctx, t, err)
	}

	suggestion, err := parser.Parse(raw)
	if err != nil {
		c.deps.Logger.Warn("unusable backend response", map[string]interface{}{
			"turn_id": t.id,
			"backend": t.backend,
			"error":   err.Error(),
		})
		outcome := domain.ParseFailed(err.Error())
		outcome.Err = err
		return t.finish(outcome)
	}

	if !c.deps.Gate.Accept(backend.Kind(), suggestion) {
		if c.escalate(t, domain.FailureLowConfidence) {
			return stateGenerating
		}
		c.deps.Logger.Warn("low confidence suggestion kept, no backend to escalate to", map[string]interface{}{
			"turn_id": t.id,
			"backend": t.backend,
		})
	}

	t.suggestion = &suggestion
	if c.settings.CopyToClipboard && c.deps.Clipboard != nil && c.deps.Clipboard.Enabled() {
		if err := c.deps.Clipboard.Copy(suggestion.Command); err != nil {
			c.deps.Logger.Warn("clipboard copy failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return stateParsed
}

func (c *Controller) backendFor(name string) (ports.Backend, error) {
	def, ok := c.deps.Config.FindBackendByName(name)
	if !ok {
		return nil, domain.NewBackendError(name, fmt.Errorf("%w: %w", domain.ErrModelUnavailable, domain.ErrBackendNotFound))
	}
	backend, err := c.deps.Backends.ForBackend(def)
	if err != nil {
		return nil, domain.NewBackendError(name, fmt.Errorf("%w: %v", domain.ErrModelUnavailable, err))
	}
	return backend, nil
}

// handleBackendFailure applies the taxonomy: auth disables the backend for
// the session, network and timeout get one same-backend retry, and every
// kind may then take the single escalation hop.
func (c *Controller) handleBackendFailure(ctx context.Context, t *turn, err error) state {
	kind := domain.FailureKindOf(err)
	if kind == domain.FailureCancelled || ctx.Err() != nil {
		return t.finish(cancelled(stateGenerating, err))
	}

	c.deps.Logger.Warn("backend call failed", map[string]interface{}{
		"turn_id": t.id,
		"backend": t.backend,
		"kind":    string(kind),
		"error":   err.Error(),
	})

	if kind == domain.FailureAuth {
		c.deps.Policy.Disable(t.backend, err.Error())
	}

	if kind.Retryable() && t.retries < domain.MaxNetworkRetries {
		t.retries++
		if waitErr := sleep(ctx, c.settings.RetryBackoff); waitErr != nil {
			return t.finish(cancelled(stateGenerating, waitErr))
		}
		return stateGenerating
	}

	if c.escalate(t, kind) {
		return stateGenerating
	}

	outcome := domain.BackendUnavailable(err.Error())
	outcome.FailureKind = kind
	outcome.Err = err
	return t.finish(outcome)
}

// escalate moves the turn to the next backend if the hop budget allows it.
func (c *Controller) escalate(t *turn, kind domain.FailureKind) bool {
	if t.escalations >= domain.MaxEscalations {
		return false
	}
	selection := c.deps.Policy.ChooseBackend(t.backend, kind, t.attempted)
	if !selection.OK {
		c.deps.Logger.Debug("no escalation target", map[string]interface{}{
			"turn_id": t.id,
			"reason":  selection.Reason,
		})
		return false
	}

	c.deps.Logger.Info("escalating backend", map[string]interface{}{
		"turn_id": t.id,
		"from":    t.backend,
		"to":      selection.Backend,
		"kind":    string(kind),
	})
	t.escalations++
	t.escalated = true
	t.backend = selection.Backend
	t.attempted = append(t.attempted, selection.Backend)
	t.retries = 0
	return true
}

// classify combines the rule verdict with the backend's own flag.
func (c *Controller) classify(t *turn) state {
	t.risk = c.deps.Classifier.Classify(t.suggestion.Command).Combine(t.suggestion.Dangerous)
	return stateAwaitingConfirmation
}

// confirm always asks. Only an explicit yes moves on to execution.
func (c *Controller) confirm(ctx context.Context, t *turn) state {
	approved, err := c.deps.Prompter.Confirm(ctx, domain.ConfirmationRequest{
		Command:     t.suggestion.Command,
		Explanation: t.suggestion.Explanation,
		Risk:        t.risk,
		Backend:     t.backend,
		Recovery:    t.prior != nil,
		Failure:     t.prior,
	})
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return t.finish(cancelled(stateAwaitingConfirmation, err))
		}
		outcome := domain.Declined()
		outcome.Reason = "confirmation failed: " + err.Error()
		outcome.Err = err
		return t.finish(outcome)
	}
	if !approved {
		return t.finish(domain.Declined())
	}
	return stateExecuting
}

// execute hands the literal command to the executor.
func (c *Controller) execute(ctx context.Context, t *turn) state {
	command := t.suggestion.Command
	result, err := c.deps.Executor.Execute(ctx, command)
	t.result = result

	if ctx.Err() != nil {
		return t.finish(cancelled(stateExecuting, ctx.Err()))
	}
	if err != nil {
		outcome := domain.Failed(result.ExitCode, result.Stderr)
		outcome.Reason = "could not start command: " + err.Error()
		outcome.Err = err
		return t.finish(outcome)
	}

	if result.Succeeded() {
		c.setLastFailure(nil)
		return t.finish(domain.Executed(result.ExitCode))
	}

	failure := result.Failure(command)
	failure.Utterance = t.request.Utterance
	c.setLastFailure(failure)

	if c.settings.RecoveryEnabled && t.recoveries < domain.MaxRecoveryAttempts {
		return stateErrorRecovery
	}
	outcome := domain.Failed(result.ExitCode, result.Stderr)
	outcome.Err = fmt.Errorf("command %q exited with status %d", command, result.ExitCode)
	return t.finish(outcome)
}

// recover folds the failed command into the next prompt and re-enters
// generation on the backend that produced it.
func (c *Controller) recover(t *turn) state {
	t.recoveries++
	t.prior = t.result.Failure(t.suggestion.Command)
	t.prior.Utterance = t.request.Utterance
	t.request.Failure = t.prior
	t.suggestion = nil
	t.risk = domain.RiskAssessment{}
	t.retries = 0

	c.deps.Logger.Info("attempting error recovery", map[string]interface{}{
		"turn_id":   t.id,
		"command":   t.prior.Command,
		"exit_code": t.prior.ExitCode,
	})
	return stateGenerating
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
