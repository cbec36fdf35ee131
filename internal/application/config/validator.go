// Package config validates a loaded configuration beyond what decoding checks.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doeshing/nlsh/internal/domain"
)

// Validate ensures config structure is consistent. Every problem found is
// reported, not just the first.
func Validate(cfg domain.Config) error {
	var errs []error
	if err := cfg.ValidateConsistency(); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, validatePreferences(cfg.Preferences)...)
	errs = append(errs, validateBackends(cfg.Backends)...)
	errs = append(errs, validateFallback(cfg.Fallback)...)
	errs = append(errs, validateContext(cfg.Context)...)
	errs = append(errs, validateConfirm(cfg.Confirm)...)
	errs = append(errs, validateLogging(cfg.Logging)...)
	errs = append(errs, validateResilience(cfg.Resilience)...)
	return errors.Join(errs...)
}

func validatePreferences(prefs domain.Preferences) []error {
	var errs []error
	switch strings.ToLower(prefs.Shell) {
	case "", "auto":
	default:
		if _, ok := domain.ParseShellFamily(prefs.Shell); !ok {
			errs = append(errs, fmt.Errorf("preferences.shell must be auto|posix|powershell|cmd, got %s", prefs.Shell))
		}
	}
	for key, value := range map[string]string{
		"preferences.request_timeout": prefs.RequestTimeout,
		"preferences.local_timeout":   prefs.LocalTimeout,
		"preferences.retry_backoff":   prefs.RetryBackoff,
	} {
		if err := validateDuration(key, value); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func validateBackends(backends []domain.BackendDefinition) []error {
	var errs []error
	for _, def := range backends {
		if def.Temperature != nil && (*def.Temperature < 0 || *def.Temperature > 2) {
			errs = append(errs, fmt.Errorf("backend %s: temperature must be within [0, 2]", def.Name))
		}
		if def.MaxTokens < 0 {
			errs = append(errs, fmt.Errorf("backend %s: max_tokens must be >= 0", def.Name))
		}
		if def.Endpoint != "" && !strings.HasPrefix(def.Endpoint, "http://") && !strings.HasPrefix(def.Endpoint, "https://") {
			errs = append(errs, fmt.Errorf("backend %s: endpoint must be an http(s) URL", def.Name))
		}
	}
	return errs
}

func validateFallback(fb domain.FallbackSettings) []error {
	var errs []error
	switch strings.ToLower(fb.Policy) {
	case "", "ordered", "confidence":
	default:
		errs = append(errs, fmt.Errorf("fallback.policy must be ordered|confidence, got %s", fb.Policy))
	}
	if fb.MinConfidence < 0 || fb.MinConfidence > 1 {
		errs = append(errs, fmt.Errorf("fallback.min_confidence must be within [0, 1]"))
	}
	return errs
}

func validateContext(ctx domain.ContextSettings) []error {
	if ctx.MaxFiles < 0 {
		return []error{fmt.Errorf("context.max_files must be >= 0")}
	}
	return nil
}

func validateConfirm(confirm domain.ConfirmSettings) []error {
	switch strings.ToLower(confirm.Style) {
	case "", "auto", "plain", "form":
		return nil
	default:
		return []error{fmt.Errorf("confirm.style must be auto|plain|form, got %s", confirm.Style)}
	}
}

func validateLogging(logging domain.LoggingSettings) []error {
	var errs []error
	switch strings.ToLower(logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level must be debug|info|warn|error, got %s", logging.Level))
	}
	switch strings.ToLower(logging.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be text|json, got %s", logging.Format))
	}
	return errs
}

func validateResilience(res domain.ResilienceSettings) []error {
	var errs []error
	if err := validateDuration("resilience.circuit_breaker.timeout", res.CircuitBreaker.Timeout); err != nil {
		errs = append(errs, err)
	}
	if res.RateLimit.RequestsPerMinute < 0 || res.RateLimit.Burst < 0 {
		errs = append(errs, fmt.Errorf("resilience.rate_limit values must be >= 0"))
	}
	return errs
}

func validateDuration(key, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s invalid: %w", key, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s must be positive", key)
	}
	return nil
}
