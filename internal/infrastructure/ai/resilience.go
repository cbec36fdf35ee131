package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/doeshing/nlsh/internal/domain"
	"github.com/doeshing/nlsh/internal/ports"
)

// resilientBackend puts a circuit breaker in front of every backend and a
// token bucket in front of cloud ones. An open circuit surfaces as
// ErrModelUnavailable so the pipeline escalates instead of retrying.
type resilientBackend struct {
	inner   ports.Backend
	breaker *gobreaker.CircuitBreaker[string]
	limiter *rate.Limiter
}

func newResilientBackend(inner ports.Backend, opts Options, logger ports.Logger) *resilientBackend {
	maxFailures := opts.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = domain.DefaultBreakerMaxFailures
	}
	timeout := opts.BreakerTimeout
	if timeout <= 0 {
		timeout = domain.DefaultBreakerTimeout
	}

	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "backend:" + inner.Name(),
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
		// Cancellation and bad credentials say nothing about backend health.
		IsSuccessful: func(err error) bool {
			switch domain.FailureKindOf(err) {
			case domain.FailureNone, domain.FailureCancelled, domain.FailureAuth:
				return true
			default:
				return false
			}
		},
	})

	b := &resilientBackend{inner: inner, breaker: breaker}
	if inner.Kind().IsCloud() {
		rpm := opts.RequestsPerMinute
		if rpm <= 0 {
			rpm = domain.DefaultRequestsPerMinute
		}
		burst := opts.Burst
		if burst <= 0 {
			burst = domain.DefaultRateBurst
		}
		b.limiter = rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst)
	}
	return b
}

func (b *resilientBackend) Name() string { return b.inner.Name() }

func (b *resilientBackend) Kind() domain.BackendKind { return b.inner.Kind() }

func (b *resilientBackend) Generate(ctx context.Context, req ports.GenerateRequest) (string, error) {
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			return "", domain.NewBackendError(b.Name(), fmt.Errorf("%w: rate limit: %v", domain.ErrNetwork, err))
		}
	}

	text, err := b.breaker.Execute(func() (string, error) {
		return b.inner.Generate(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", domain.NewBackendError(b.Name(), fmt.Errorf("%w: circuit open: %v", domain.ErrModelUnavailable, err))
		}
		return "", err
	}
	return text, nil
}

// Ping forwards to the wrapped backend when it supports reachability checks.
func (b *resilientBackend) Ping(ctx context.Context) error {
	if pinger, ok := b.inner.(ports.Pinger); ok {
		return pinger.Ping(ctx)
	}
	return nil
}

// State exposes the breaker state for diagnostics.
func (b *resilientBackend) State() gobreaker.State {
	return b.breaker.State()
}

var (
	_ ports.Backend = (*resilientBackend)(nil)
	_ ports.Pinger  = (*resilientBackend)(nil)
)
