package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/doeshing/nlsh/internal/domain"
)

func validConfig() domain.Config {
	return domain.Config{
		Preferences: domain.Preferences{
			DefaultBackend: "anthropic",
			FallbackOrder:  []string{"local"},
			Shell:          "auto",
			RetryBackoff:   "750ms",
		},
		Backends: []domain.BackendDefinition{
			{Name: "anthropic", Kind: domain.BackendAnthropic},
			{Name: "local", Kind: domain.BackendLocal, Endpoint: "http://localhost:11434"},
		},
		Fallback: domain.FallbackSettings{Policy: "ordered", MinConfidence: 0.6},
		Confirm:  domain.ConfirmSettings{Style: "auto"},
		Logging:  domain.LoggingSettings{Level: "warn", Format: "text"},
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	assert.NoError(t, Validate(validConfig()))
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := validConfig()
	cfg.Preferences.Shell = "tcsh-ish"
	cfg.Preferences.RetryBackoff = "soon"
	cfg.Fallback.Policy = "random"
	cfg.Confirm.Style = "yolo"
	cfg.Logging.Format = "xml"
	hot := 3.5
	cfg.Backends[0].Temperature = &hot
	cfg.Backends[1].Endpoint = "localhost:11434"

	err := Validate(cfg)
	assert.Error(t, err)
	for _, want := range []string{
		"preferences.shell",
		"preferences.retry_backoff",
		"fallback.policy",
		"confirm.style",
		"logging.format",
		"temperature",
		"endpoint must be an http(s) URL",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidateUnknownFallbackBackend(t *testing.T) {
	cfg := validConfig()
	cfg.Preferences.FallbackOrder = []string{"ghost"}
	err := Validate(cfg)
	assert.ErrorContains(t, err, "fallback backend ghost")
}
