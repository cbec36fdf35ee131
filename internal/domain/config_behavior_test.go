package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/nlsh/internal/domain"
)

func sampleConfig() domain.Config {
	return domain.Config{
		Preferences: domain.Preferences{
			DefaultBackend: "claude",
			FallbackOrder:  []string{"gpt", "claude", "local", "missing"},
		},
		Backends: []domain.BackendDefinition{
			{Name: "claude", Kind: domain.BackendAnthropic},
			{Name: "gpt", Kind: domain.BackendOpenAI},
			{Name: "local", Kind: domain.BackendLocal},
		},
	}
}

// TestConfig_GetDefaultBackend tests retrieving the default backend
func TestConfig_GetDefaultBackend(t *testing.T) {
	tests := []struct {
		name     string
		config   domain.Config
		wantErr  bool
		wantKind domain.BackendKind
	}{
		{
			name:     "returns default backend successfully",
			config:   sampleConfig(),
			wantKind: domain.BackendAnthropic,
		},
		{
			name: "returns error when default backend not found",
			config: domain.Config{
				Preferences: domain.Preferences{DefaultBackend: "nonexistent"},
				Backends:    []domain.BackendDefinition{{Name: "claude", Kind: domain.BackendAnthropic}},
			},
			wantErr: true,
		},
		{
			name: "returns error when no default backend configured",
			config: domain.Config{
				Backends: []domain.BackendDefinition{{Name: "claude", Kind: domain.BackendAnthropic}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := tt.config.GetDefaultBackend()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, def.Kind)
		})
	}
}

func TestConfig_GetDefaultBackendWrapsNotFound(t *testing.T) {
	cfg := domain.Config{Preferences: domain.Preferences{DefaultBackend: "x"}}
	_, err := cfg.GetDefaultBackend()
	assert.True(t, errors.Is(err, domain.ErrBackendNotFound))
}

func TestConfig_PreferenceOrder(t *testing.T) {
	cfg := sampleConfig()
	assert.Equal(t, []string{"claude", "gpt", "local"}, cfg.PreferenceOrder())
}

func TestConfig_PreferenceOrderFallsBackToFirstBackend(t *testing.T) {
	cfg := domain.Config{
		Backends: []domain.BackendDefinition{{Name: "only", Kind: domain.BackendLocal}},
	}
	assert.Equal(t, []string{"only"}, cfg.PreferenceOrder())
}

func TestConfig_Durations(t *testing.T) {
	cfg := domain.Config{
		Preferences: domain.Preferences{
			RequestTimeout: "5s",
			LocalTimeout:   "not-a-duration",
			RetryBackoff:   "-1s",
		},
	}
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout())
	assert.Equal(t, domain.DefaultLocalTimeout, cfg.LocalTimeout())
	assert.Equal(t, domain.DefaultRetryBackoff, cfg.RetryBackoff())
	assert.Equal(t, domain.DefaultBreakerTimeout, cfg.BreakerTimeout())
}

func TestConfig_Limits(t *testing.T) {
	var cfg domain.Config
	assert.Equal(t, domain.DefaultMaxContextFiles, cfg.GetMaxContextFiles())
	assert.Equal(t, domain.DefaultMaxOutputBytes, cfg.GetMaxOutputBytes())
	assert.InDelta(t, domain.DefaultMinConfidence, cfg.GetMinConfidence(), 1e-9)
	assert.Equal(t, uint32(domain.DefaultBreakerMaxFailures), cfg.BreakerMaxFailures())

	cfg.Context.MaxFiles = 7
	cfg.Fallback.MinConfidence = 0.9
	assert.Equal(t, 7, cfg.GetMaxContextFiles())
	assert.InDelta(t, 0.9, cfg.GetMinConfidence(), 1e-9)
}

// TestConfig_ValidateConsistency tests configuration consistency validation
func TestConfig_ValidateConsistency(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.Config)
		wantErr string
	}{
		{
			name:   "valid configuration",
			mutate: func(c *domain.Config) { c.Preferences.FallbackOrder = []string{"gpt"} },
		},
		{
			name:    "no backends",
			mutate:  func(c *domain.Config) { c.Backends = nil },
			wantErr: "no backends configured",
		},
		{
			name: "duplicate backend",
			mutate: func(c *domain.Config) {
				c.Backends = append(c.Backends, domain.BackendDefinition{Name: "gpt", Kind: domain.BackendOpenAI})
				c.Preferences.FallbackOrder = nil
			},
			wantErr: "declared twice",
		},
		{
			name: "unknown kind",
			mutate: func(c *domain.Config) {
				c.Backends[1].Kind = "bedrock"
				c.Preferences.FallbackOrder = nil
			},
			wantErr: "unknown kind",
		},
		{
			name:    "missing fallback",
			mutate:  func(c *domain.Config) { c.Preferences.FallbackOrder = []string{"missing"} },
			wantErr: "fallback backend missing",
		},
		{
			name:    "missing default",
			mutate:  func(c *domain.Config) { c.Preferences.DefaultBackend = "nope"; c.Preferences.FallbackOrder = nil },
			wantErr: "default backend nope",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := sampleConfig()
			tt.mutate(&cfg)
			err := cfg.ValidateConsistency()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBackendDefinitionResolvedDefaults(t *testing.T) {
	def := domain.BackendDefinition{Name: "g", Kind: domain.BackendGemini, Endpoint: "https://example.test/", AuthEnvVar: "MY_KEY"}
	assert.Equal(t, "https://example.test", def.ResolvedEndpoint())
	assert.Equal(t, domain.DefaultGeminiModel, def.ResolvedModel())
	assert.Equal(t, domain.DefaultMaxTokens, def.ResolvedMaxTokens())
	assert.InDelta(t, domain.DefaultTemperature, def.ResolvedTemperature(), 1e-9)
	assert.Equal(t, []string{"MY_KEY", "GEMINI_API_KEY"}, def.AuthEnvVars())

	local := domain.BackendDefinition{Kind: domain.BackendLocal}
	assert.Empty(t, local.AuthEnvVars())
	assert.Equal(t, domain.DefaultLocalEndpoint, local.ResolvedEndpoint())
	assert.False(t, local.Kind.IsCloud())
}
