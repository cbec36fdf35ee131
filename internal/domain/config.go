package domain

// Config mirrors ~/.nlsh/config.yaml (or config.toml).
type Config struct {
	ConfigFormatVersion string              `yaml:"config_format_version" toml:"config_format_version"`
	Preferences         Preferences         `yaml:"preferences" toml:"preferences"`
	Backends            []BackendDefinition `yaml:"backends" toml:"backends"`
	Fallback            FallbackSettings    `yaml:"fallback" toml:"fallback"`
	Context             ContextSettings     `yaml:"context" toml:"context"`
	Safety              SafetySettings      `yaml:"safety" toml:"safety"`
	Confirm             ConfirmSettings     `yaml:"confirm" toml:"confirm"`
	Recovery            RecoverySettings    `yaml:"recovery" toml:"recovery"`
	History             HistorySettings     `yaml:"history" toml:"history"`
	Logging             LoggingSettings     `yaml:"logging" toml:"logging"`
	Tracing             TracingSettings     `yaml:"tracing" toml:"tracing"`
	Resilience          ResilienceSettings  `yaml:"resilience" toml:"resilience"`
}

// Preferences captures user level toggles.
type Preferences struct {
	DefaultBackend string   `yaml:"default_backend" toml:"default_backend"`
	FallbackOrder  []string `yaml:"fallback_order" toml:"fallback_order"`
	// Shell is auto|posix|powershell|cmd.
	Shell          string `yaml:"shell" toml:"shell"`
	RequestTimeout string `yaml:"request_timeout" toml:"request_timeout"`
	LocalTimeout   string `yaml:"local_timeout" toml:"local_timeout"`
	RetryBackoff   string `yaml:"retry_backoff" toml:"retry_backoff"`
}

// FallbackSettings selects the quality gate.
type FallbackSettings struct {
	// Policy is ordered|confidence.
	Policy        string  `yaml:"policy" toml:"policy"`
	MinConfidence float64 `yaml:"min_confidence" toml:"min_confidence"`
}

// ContextSettings configures local context collection.
type ContextSettings struct {
	IncludeFiles bool `yaml:"include_files" toml:"include_files"`
	MaxFiles     int  `yaml:"max_files" toml:"max_files"`
	IncludeGit   bool `yaml:"include_git" toml:"include_git"`
}

// SafetySettings points at the user rule file.
type SafetySettings struct {
	RulesFile string `yaml:"rules_file" toml:"rules_file"`
}

// ConfirmSettings controls the confirmation prompt.
type ConfirmSettings struct {
	// Style is auto|plain|form.
	Style string `yaml:"style" toml:"style"`
	// TypedYesForDangerous requires the word "yes" for dangerous commands.
	TypedYesForDangerous bool `yaml:"typed_yes_for_dangerous" toml:"typed_yes_for_dangerous"`
}

// RecoverySettings controls the error-recovery re-entry.
type RecoverySettings struct {
	Enabled        bool `yaml:"enabled" toml:"enabled"`
	RedactSecrets  bool `yaml:"redact_secrets" toml:"redact_secrets"`
	MaxOutputBytes int  `yaml:"max_output_bytes" toml:"max_output_bytes"`
}

// HistorySettings controls the turn history store.
type HistorySettings struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Path    string `yaml:"path,omitempty" toml:"path,omitempty"`
}

// LoggingSettings configures the structured logger.
type LoggingSettings struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
	Output string `yaml:"output" toml:"output"`
}

// TracingSettings configures OpenTelemetry.
type TracingSettings struct {
	Enabled  bool   `yaml:"enabled" toml:"enabled"`
	Exporter string `yaml:"exporter" toml:"exporter"`
}

// ResilienceSettings wraps breaker and rate limit settings.
type ResilienceSettings struct {
	CircuitBreaker CircuitBreakerSettings `yaml:"circuit_breaker" toml:"circuit_breaker"`
	RateLimit      RateLimitSettings      `yaml:"rate_limit" toml:"rate_limit"`
}

// CircuitBreakerSettings configures the per-backend breaker.
type CircuitBreakerSettings struct {
	MaxFailures uint32 `yaml:"max_failures" toml:"max_failures"`
	Timeout     string `yaml:"timeout" toml:"timeout"`
}

// RateLimitSettings configures the per-backend limiter for cloud backends.
type RateLimitSettings struct {
	RequestsPerMinute int `yaml:"requests_per_minute" toml:"requests_per_minute"`
	Burst             int `yaml:"burst" toml:"burst"`
}
