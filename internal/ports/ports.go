// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and external
// adapters (infrastructure). The pipeline controller only ever talks to these
// interfaces, so every backend, the executor and the confirmation prompt can be
// replaced by a stub in tests.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., Backend, CommandExecutor)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"

	"github.com/doeshing/nlsh/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.nlsh/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// ShellDetector produces the session ShellContext once at startup.
type ShellDetector interface {
	Detect(context.Context, domain.Config) domain.ShellContext
}

// ContextCollector gathers working-directory details folded into prompts.
type ContextCollector interface {
	Collect(context.Context, domain.Config) (domain.LocalContext, error)
}

// Backend is the single capability every command-generating provider exposes.
// Generate returns the backend's raw text; parsing happens elsewhere.
// Errors wrap one of domain.ErrAuth, ErrNetwork, ErrTimeout or ErrModelUnavailable.
type Backend interface {
	Name() string
	Kind() domain.BackendKind
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// GenerateRequest is the prompt plus the shell it targets.
type GenerateRequest struct {
	Prompt string
	Shell  domain.ShellContext
}

// Pinger is implemented by backends that can check reachability without generating.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BackendFactory builds Backend instances from config definitions.
type BackendFactory interface {
	ForBackend(domain.BackendDefinition) (Backend, error)
}

// SafetyClassifier evaluates a command string against the static rule set.
// It never performs I/O, so it is available even when every backend is down.
type SafetyClassifier interface {
	Classify(command string) domain.RiskAssessment
}

// CommandExecutor runs shell commands in the session shell.
type CommandExecutor interface {
	Execute(ctx context.Context, command string) (domain.ExecutionResult, error)
}

// ConfirmationPrompter asks the user whether to run a command. Any answer
// other than an explicit yes must return false.
type ConfirmationPrompter interface {
	Confirm(ctx context.Context, req domain.ConfirmationRequest) (bool, error)
}

// TurnObserver receives progress notifications while a turn runs.
// Renderers and spinners implement it; the pipeline works without one.
type TurnObserver interface {
	GenerationStarted(backend string, recovery bool)
	GenerationFinished(backend string, err error)
}

// Clipboard provides cross-platform clipboard integration for copying commands.
type Clipboard interface {
	Copy(text string) error
	Enabled() bool
}

// HistoryRepository persists completed turns.
type HistoryRepository interface {
	Save(ctx context.Context, record domain.TurnRecord) error
	Records(ctx context.Context, limit int, search string) ([]domain.TurnRecord, error)
	Clear(ctx context.Context) error
	Close() error
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
