// Package ai adapts the command-generating backends (Anthropic, OpenAI,
// Gemini and a local Ollama server) to ports.Backend.
package ai

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/doeshing/nlsh/internal/domain"
	"github.com/doeshing/nlsh/internal/ports"
)

// Options tune the timeouts and resilience wrappers applied to every backend.
type Options struct {
	RequestTimeout     time.Duration
	LocalTimeout       time.Duration
	BreakerMaxFailures uint32
	BreakerTimeout     time.Duration
	RequestsPerMinute  int
	Burst              int
}

// OptionsFromConfig reads the backend options out of cfg.
func OptionsFromConfig(cfg domain.Config) Options {
	return Options{
		RequestTimeout:     cfg.RequestTimeout(),
		LocalTimeout:       cfg.LocalTimeout(),
		BreakerMaxFailures: cfg.BreakerMaxFailures(),
		BreakerTimeout:     cfg.BreakerTimeout(),
		RequestsPerMinute:  cfg.Resilience.RateLimit.RequestsPerMinute,
		Burst:              cfg.Resilience.RateLimit.Burst,
	}
}

// Factory builds backends on demand and caches them by name so breaker and
// limiter state survive across turns.
type Factory struct {
	opts       Options
	httpClient *http.Client
	logger     ports.Logger

	mu    sync.Mutex
	cache map[string]ports.Backend
}

// NewFactory returns a Factory. A nil client means NewHTTPClient(opts).
func NewFactory(opts Options, client *http.Client, logger ports.Logger) *Factory {
	if client == nil {
		client = NewHTTPClient(opts)
	}
	return &Factory{
		opts:       opts,
		httpClient: client,
		logger:     logger,
		cache:      make(map[string]ports.Backend),
	}
}

// ForBackend implements ports.BackendFactory.
func (f *Factory) ForBackend(def domain.BackendDefinition) (ports.Backend, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if backend, ok := f.cache[def.Name]; ok {
		return backend, nil
	}
	backend, err := f.build(def)
	if err != nil {
		return nil, err
	}
	f.cache[def.Name] = backend
	return backend, nil
}

func (f *Factory) build(def domain.BackendDefinition) (ports.Backend, error) {
	kind, ok := domain.ParseBackendKind(string(def.Kind))
	if !ok {
		return nil, fmt.Errorf("backend %s: unsupported kind %q", def.Name, def.Kind)
	}
	def.Kind = kind

	var inner ports.Backend
	switch kind {
	case domain.BackendAnthropic:
		inner = newHTTPBackend(def, f.httpClient, anthropicAdapter(), f.opts.RequestTimeout, f.logger)
	case domain.BackendOpenAI:
		inner = newHTTPBackend(def, f.httpClient, openaiAdapter(), f.opts.RequestTimeout, f.logger)
	case domain.BackendGemini:
		inner = newHTTPBackend(def, f.httpClient, geminiAdapter(), f.opts.RequestTimeout, f.logger)
	case domain.BackendLocal:
		inner = &localBackend{httpBackend: newHTTPBackend(def, f.httpClient, localAdapter(), f.opts.LocalTimeout, f.logger)}
	}
	return newResilientBackend(inner, f.opts, f.logger), nil
}

var _ ports.BackendFactory = (*Factory)(nil)
