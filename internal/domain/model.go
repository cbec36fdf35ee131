// Package domain defines core entities and value objects for nlsh.
//
// This file contains backend definitions declared in the config file. The
// domain layer is independent of infrastructure concerns.
package domain

import "strings"

// BackendKind is the closed set of command-generating backends.
type BackendKind string

const (
	BackendAnthropic BackendKind = "anthropic"
	BackendOpenAI    BackendKind = "openai"
	BackendGemini    BackendKind = "gemini"
	BackendLocal     BackendKind = "local"
)

// IsCloud reports whether the backend talks to a remote API with credentials.
func (k BackendKind) IsCloud() bool {
	return k == BackendAnthropic || k == BackendOpenAI || k == BackendGemini
}

// ParseBackendKind normalises config input; ok is false for unknown kinds.
func ParseBackendKind(value string) (BackendKind, bool) {
	switch BackendKind(strings.ToLower(strings.TrimSpace(value))) {
	case BackendAnthropic:
		return BackendAnthropic, true
	case BackendOpenAI:
		return BackendOpenAI, true
	case BackendGemini:
		return BackendGemini, true
	case BackendLocal, "ollama":
		return BackendLocal, true
	default:
		return "", false
	}
}

// BackendDefinition describes one backend declared in the config file.
type BackendDefinition struct {
	Name        string      `yaml:"name" toml:"name"`
	Kind        BackendKind `yaml:"kind" toml:"kind"`
	Endpoint    string      `yaml:"endpoint,omitempty" toml:"endpoint,omitempty"`
	AuthEnvVar  string      `yaml:"auth_env_var,omitempty" toml:"auth_env_var,omitempty"`
	OrgEnvVar   string      `yaml:"org_env_var,omitempty" toml:"org_env_var,omitempty"`
	ModelID     string      `yaml:"model_id" toml:"model_id"`
	MaxTokens   int         `yaml:"max_tokens,omitempty" toml:"max_tokens,omitempty"`
	Temperature *float64    `yaml:"temperature,omitempty" toml:"temperature,omitempty"`
}

// Default endpoints and models per backend kind.
const (
	DefaultAnthropicEndpoint = "https://api.anthropic.com"
	DefaultOpenAIEndpoint    = "https://api.openai.com"
	DefaultGeminiEndpoint    = "https://generativelanguage.googleapis.com"
	DefaultLocalEndpoint     = "http://localhost:11434"

	DefaultAnthropicModel = "claude-3-5-haiku-latest"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultGeminiModel    = "gemini-2.0-flash"
	DefaultLocalModel     = "qwen2.5:0.5b-instruct"

	DefaultTemperature = 0.7
)

// DefaultAuthEnvVar is the environment variable consulted when AuthEnvVar is empty.
func (k BackendKind) DefaultAuthEnvVar() string {
	switch k {
	case BackendAnthropic:
		return "ANTHROPIC_API_KEY"
	case BackendOpenAI:
		return "OPENAI_API_KEY"
	case BackendGemini:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// DefaultEndpoint returns the base URL for the kind.
func (k BackendKind) DefaultEndpoint() string {
	switch k {
	case BackendAnthropic:
		return DefaultAnthropicEndpoint
	case BackendOpenAI:
		return DefaultOpenAIEndpoint
	case BackendGemini:
		return DefaultGeminiEndpoint
	default:
		return DefaultLocalEndpoint
	}
}

// DefaultModel returns the model used when ModelID is empty.
func (k BackendKind) DefaultModel() string {
	switch k {
	case BackendAnthropic:
		return DefaultAnthropicModel
	case BackendOpenAI:
		return DefaultOpenAIModel
	case BackendGemini:
		return DefaultGeminiModel
	default:
		return DefaultLocalModel
	}
}

// ResolvedEndpoint returns Endpoint without a trailing slash, or the kind default.
func (d BackendDefinition) ResolvedEndpoint() string {
	if d.Endpoint == "" {
		return d.Kind.DefaultEndpoint()
	}
	return strings.TrimRight(d.Endpoint, "/")
}

// ResolvedModel returns ModelID or the kind default.
func (d BackendDefinition) ResolvedModel() string {
	if d.ModelID == "" {
		return d.Kind.DefaultModel()
	}
	return d.ModelID
}

// ResolvedMaxTokens returns MaxTokens or DefaultMaxTokens.
func (d BackendDefinition) ResolvedMaxTokens() int {
	if d.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return d.MaxTokens
}

// ResolvedTemperature returns Temperature or DefaultTemperature.
func (d BackendDefinition) ResolvedTemperature() float64 {
	if d.Temperature == nil {
		return DefaultTemperature
	}
	return *d.Temperature
}

// AuthEnvVars lists the variables checked for a credential, most specific first.
func (d BackendDefinition) AuthEnvVars() []string {
	var vars []string
	if d.AuthEnvVar != "" {
		vars = append(vars, d.AuthEnvVar)
	}
	if fallback := d.Kind.DefaultAuthEnvVar(); fallback != "" && fallback != d.AuthEnvVar {
		vars = append(vars, fallback)
	}
	return vars
}
