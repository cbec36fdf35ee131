package domain

import (
	"fmt"
	"time"
)

// GetDefaultBackend retrieves the default backend definition from configuration
// Returns an error if the default backend is not found
func (c *Config) GetDefaultBackend() (BackendDefinition, error) {
	if c.Preferences.DefaultBackend == "" {
		return BackendDefinition{}, fmt.Errorf("no default backend configured")
	}
	def, ok := c.FindBackendByName(c.Preferences.DefaultBackend)
	if !ok {
		return BackendDefinition{}, fmt.Errorf("default backend %s not found in configuration: %w", c.Preferences.DefaultBackend, ErrBackendNotFound)
	}
	return def, nil
}

// FindBackendByName searches for a backend by its name
func (c *Config) FindBackendByName(name string) (BackendDefinition, bool) {
	for _, def := range c.Backends {
		if def.Name == name {
			return def, true
		}
	}
	return BackendDefinition{}, false
}

// HasBackend checks if a backend with the given name exists in the configuration
func (c *Config) HasBackend(name string) bool {
	_, exists := c.FindBackendByName(name)
	return exists
}

// PreferenceOrder is the default backend followed by the fallback order,
// deduplicated and restricted to configured backends.
func (c *Config) PreferenceOrder() []string {
	seen := make(map[string]bool)
	var order []string
	add := func(name string) {
		if name == "" || seen[name] || !c.HasBackend(name) {
			return
		}
		seen[name] = true
		order = append(order, name)
	}
	add(c.Preferences.DefaultBackend)
	for _, name := range c.Preferences.FallbackOrder {
		add(name)
	}
	if len(order) == 0 && len(c.Backends) > 0 {
		order = append(order, c.Backends[0].Name)
	}
	return order
}

// RequestTimeout returns the cloud request timeout.
func (c *Config) RequestTimeout() time.Duration {
	return parseDurationOr(c.Preferences.RequestTimeout, DefaultRequestTimeout)
}

// LocalTimeout returns the wall-clock cap for local inference.
func (c *Config) LocalTimeout() time.Duration {
	return parseDurationOr(c.Preferences.LocalTimeout, DefaultLocalTimeout)
}

// RetryBackoff returns the delay before the single network retry.
func (c *Config) RetryBackoff() time.Duration {
	return parseDurationOr(c.Preferences.RetryBackoff, DefaultRetryBackoff)
}

// BreakerTimeout returns how long an open circuit stays open.
func (c *Config) BreakerTimeout() time.Duration {
	return parseDurationOr(c.Resilience.CircuitBreaker.Timeout, DefaultBreakerTimeout)
}

// BreakerMaxFailures returns the consecutive failures that open the circuit.
func (c *Config) BreakerMaxFailures() uint32 {
	if c.Resilience.CircuitBreaker.MaxFailures == 0 {
		return DefaultBreakerMaxFailures
	}
	return c.Resilience.CircuitBreaker.MaxFailures
}

// GetMaxContextFiles returns the maximum number of directory entries in prompts
func (c *Config) GetMaxContextFiles() int {
	if c.Context.MaxFiles <= 0 {
		return DefaultMaxContextFiles
	}
	return c.Context.MaxFiles
}

// GetMaxOutputBytes caps stdout/stderr folded into a recovery prompt.
func (c *Config) GetMaxOutputBytes() int {
	if c.Recovery.MaxOutputBytes <= 0 {
		return DefaultMaxOutputBytes
	}
	return c.Recovery.MaxOutputBytes
}

// GetMinConfidence returns the confidence gate threshold.
func (c *Config) GetMinConfidence() float64 {
	if c.Fallback.MinConfidence <= 0 {
		return DefaultMinConfidence
	}
	return c.Fallback.MinConfidence
}

// ValidateConsistency checks the internal consistency of the configuration
func (c *Config) ValidateConsistency() error {
	if len(c.Backends) == 0 {
		return fmt.Errorf("no backends configured")
	}

	seen := make(map[string]bool)
	for _, def := range c.Backends {
		if def.Name == "" {
			return fmt.Errorf("backend with empty name")
		}
		if seen[def.Name] {
			return fmt.Errorf("backend %s declared twice", def.Name)
		}
		seen[def.Name] = true
		if _, ok := ParseBackendKind(string(def.Kind)); !ok {
			return fmt.Errorf("backend %s has unknown kind %q", def.Name, def.Kind)
		}
	}

	if c.Preferences.DefaultBackend != "" && !c.HasBackend(c.Preferences.DefaultBackend) {
		return fmt.Errorf("default backend %s does not exist in backends list", c.Preferences.DefaultBackend)
	}

	for _, name := range c.Preferences.FallbackOrder {
		if !c.HasBackend(name) {
			return fmt.Errorf("fallback backend %s does not exist in backends list", name)
		}
	}

	return nil
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
