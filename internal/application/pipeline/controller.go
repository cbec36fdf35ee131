// Package pipeline runs one suggestion-confirmation-execution-recovery turn.
//
// A turn is an explicit state machine driven by a single loop:
//
//	Generating -> Parsed -> AwaitingConfirmation -> Executing -> Succeeded
//	                                                          -> Failed -> ErrorRecovery -> Generating
//
// Every retry, escalation and recovery is bounded by a counter on the turn.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/trace"

	"github.com/doeshing/nlsh/internal/application/fallback"
	"github.com/doeshing/nlsh/internal/application/prompt"
	"github.com/doeshing/nlsh/internal/domain"
	"github.com/doeshing/nlsh/internal/pkg/tracer"
	"github.com/doeshing/nlsh/internal/ports"
)

// BackendPolicy is the Fallback Policy plus the session-level controls the
// controller needs.
type BackendPolicy interface {
	fallback.Policy
	Primary() domain.BackendSelection
	Disable(name, reason string)
}

// Settings are read once from configuration.
type Settings struct {
	RetryBackoff    time.Duration
	RecoveryEnabled bool
	CopyToClipboard bool
}

// SettingsFromConfig extracts controller settings.
func SettingsFromConfig(cfg domain.Config) Settings {
	return Settings{
		RetryBackoff:    cfg.RetryBackoff(),
		RecoveryEnabled: cfg.Recovery.Enabled,
	}
}

// Dependencies are the collaborators a Controller talks to. Collector,
// Observer, History and Clipboard are optional.
type Dependencies struct {
	Config     domain.Config
	Shell      domain.ShellContext
	Backends   ports.BackendFactory
	Policy     BackendPolicy
	Gate       fallback.QualityGate
	Prompts    *prompt.Builder
	Classifier ports.SafetyClassifier
	Executor   ports.CommandExecutor
	Prompter   ports.ConfirmationPrompter
	Collector  ports.ContextCollector
	Observer   ports.TurnObserver
	History    ports.HistoryRepository
	Clipboard  ports.Clipboard
	Logger     ports.Logger
}

// Controller owns the session state shared between turns: the last
// execution failure and, through the policy, the auth-disabled backends.
type Controller struct {
	deps     Dependencies
	settings Settings
	now      func() time.Time

	mu          sync.Mutex
	lastFailure *domain.FailureContext
}

// New validates deps and returns a Controller.
func New(deps Dependencies, settings Settings) (*Controller, error) {
	if deps.Backends == nil || deps.Policy == nil || deps.Classifier == nil ||
		deps.Executor == nil || deps.Prompter == nil || deps.Logger == nil {
		return nil, errors.New("pipeline.Controller dependencies not satisfied")
	}
	if deps.Gate == nil {
		deps.Gate = fallback.AcceptAll{}
	}
	if deps.Prompts == nil {
		deps.Prompts = prompt.NewBuilder(prompt.OptionsFromConfig(deps.Config))
	}
	return &Controller{deps: deps, settings: settings, now: time.Now}, nil
}

// LastFailure returns the most recent execution failure, or nil once a
// later command succeeded. It seeds RetryLastFailure.
func (c *Controller) LastFailure() *domain.FailureContext {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastFailure == nil {
		return nil
	}
	copied := *c.lastFailure
	return &copied
}

func (c *Controller) setLastFailure(failure *domain.FailureContext) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastFailure = failure
}

type state int

const (
	stateGenerating state = iota
	stateParsed
	stateAwaitingConfirmation
	stateExecuting
	stateErrorRecovery
	stateDone
)

func (s state) String() string {
	switch s {
	case stateGenerating:
		return "generating"
	case stateParsed:
		return "parsed"
	case stateAwaitingConfirmation:
		return "awaiting_confirmation"
	case stateExecuting:
		return "executing"
	case stateErrorRecovery:
		return "error_recovery"
	default:
		return "done"
	}
}

// turn is the per-turn bookkeeping. It never outlives RunTurn.
type turn struct {
	id      string
	request domain.PipelineRequest

	backend   string
	attempted []string

	retries     int
	escalations int
	recoveries  int

	suggestion *domain.CommandSuggestion
	risk       domain.RiskAssessment
	result     domain.ExecutionResult
	prior      *domain.FailureContext
	escalated  bool

	outcome domain.PipelineOutcome
}

// finish stamps the turn details onto outcome and ends the loop.
func (t *turn) finish(outcome domain.PipelineOutcome) state {
	outcome.TurnID = t.id
	if outcome.Backend == "" {
		outcome.Backend = t.backend
	}
	outcome.Suggestion = t.suggestion
	outcome.Risk = t.risk
	outcome.PriorFailure = t.prior
	outcome.Recovered = t.recoveries > 0
	outcome.Escalated = t.escalated
	t.outcome = outcome
	return stateDone
}

// RunTurn processes one utterance to a terminal outcome.
func (c *Controller) RunTurn(ctx context.Context, utterance string) domain.PipelineOutcome {
	return c.runTurn(ctx, domain.PipelineRequest{Utterance: utterance, Shell: c.deps.Shell})
}

// RetryLastFailure starts a turn in error recovery from the last failed
// command, for a user who asks for a fix after the automatic attempt was
// spent or declined. The turn has no further recovery attempt. ok is false
// when there is no failure to fix.
func (c *Controller) RetryLastFailure(ctx context.Context) (outcome domain.PipelineOutcome, ok bool) {
	failure := c.LastFailure()
	if failure == nil {
		return domain.PipelineOutcome{}, false
	}
	return c.runTurn(ctx, domain.PipelineRequest{
		Utterance: failure.Utterance,
		Shell:     c.deps.Shell,
		Failure:   failure,
	}), true
}

func (c *Controller) runTurn(ctx context.Context, request domain.PipelineRequest) domain.PipelineOutcome {
	started := c.now()
	t := &turn{id: newTurnID(started), request: request}
	if request.Failure != nil {
		t.prior = request.Failure
		t.recoveries = domain.MaxRecoveryAttempts
	}

	ctx, span := tracer.StartSpan(ctx, "pipeline.turn",
		trace.WithAttributes(
			tracer.StringAttr("turn.id", t.id),
			tracer.StringAttr("shell.family", string(c.deps.Shell.Family)),
		),
	)
	defer span.End()

	c.deps.Logger.Debug("turn started", map[string]interface{}{
		"turn_id":  t.id,
		"shell":    string(c.deps.Shell.Family),
		"recovery": t.prior != nil,
	})

	outcome := c.run(ctx, t)

	span.SetAttributes(
		tracer.StringAttr("turn.outcome", string(outcome.Kind)),
		tracer.StringAttr("turn.backend", outcome.Backend),
		tracer.BoolAttr("turn.recovered", outcome.Recovered),
		tracer.BoolAttr("turn.escalated", outcome.Escalated),
	)
	if outcome.Err != nil {
		tracer.RecordError(span, outcome.Err)
	} else {
		tracer.SetOK(span)
	}

	c.deps.Logger.Info("turn finished", map[string]interface{}{
		"turn_id":   t.id,
		"outcome":   string(outcome.Kind),
		"backend":   outcome.Backend,
		"exit_code": outcome.ExitCode,
		"recovered": outcome.Recovered,
		"escalated": outcome.Escalated,
	})

	c.record(ctx, request.Utterance, outcome, started)
	return outcome
}

func (c *Controller) run(ctx context.Context, t *turn) domain.PipelineOutcome {
	primary := c.deps.Policy.Primary()
	if !primary.OK {
		return domain.PipelineOutcome{
			Kind:   domain.OutcomeBackendUnavailable,
			TurnID: t.id,
			Reason: primary.Reason,
			Err:    domain.ErrNoBackends,
		}
	}
	t.backend = primary.Backend
	t.attempted = append(t.attempted, primary.Backend)
	t.request.Local = c.collectContext(ctx)

	st := stateGenerating
	for st != stateDone {
		if err := ctx.Err(); err != nil {
			st = t.finish(cancelled(st, err))
			break
		}
		c.deps.Logger.Debug("turn state", map[string]interface{}{
			"turn_id": t.id,
			"state":   st.String(),
			"backend": t.backend,
		})

		switch st {
		case stateGenerating:
			st = c.generate(ctx, t)
		case stateParsed:
			st = c.classify(t)
		case stateAwaitingConfirmation:
			st = c.confirm(ctx, t)
		case stateExecuting:
			st = c.execute(ctx, t)
		case stateErrorRecovery:
			st = c.recover(t)
		}
	}
	return t.outcome
}

func (c *Controller) collectContext(ctx context.Context) domain.LocalContext {
	local := domain.LocalContext{WorkingDir: c.deps.Shell.WorkingDir}
	if c.deps.Collector == nil {
		return local
	}
	collected, err := c.deps.Collector.Collect(ctx, c.deps.Config)
	if err != nil {
		c.deps.Logger.Warn("context collection failed", map[string]interface{}{"error": err.Error()})
		return local
	}
	return collected
}

func (c *Controller) record(ctx context.Context, utterance string, outcome domain.PipelineOutcome, started time.Time) {
	if c.deps.History == nil {
		return
	}
	rec := domain.NewTurnRecord(utterance, outcome, started, c.now())
	// The turn context may already be cancelled; the record is still wanted.
	if err := c.deps.History.Save(context.WithoutCancel(ctx), rec); err != nil {
		c.deps.Logger.Warn("failed to save history", map[string]interface{}{
			"turn_id": outcome.TurnID,
			"error":   err.Error(),
		})
	}
}

func cancelled(st state, err error) domain.PipelineOutcome {
	outcome := domain.Cancelled(fmt.Sprintf("interrupted while %s", st.String()))
	outcome.FailureKind = domain.FailureCancelled
	outcome.Err = err
	return outcome
}

func newTurnID(t time.Time) string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
