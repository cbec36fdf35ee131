package domain_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/doeshing/nlsh/internal/domain"
)

func TestFailureKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want domain.FailureKind
	}{
		{"nil", nil, domain.FailureNone},
		{"auth", fmt.Errorf("%w: 401", domain.ErrAuth), domain.FailureAuth},
		{"model", domain.NewBackendError("local", domain.ErrModelUnavailable), domain.FailureModelUnavailable},
		{"timeout sentinel", domain.ErrTimeout, domain.FailureTimeout},
		{"deadline", context.DeadlineExceeded, domain.FailureTimeout},
		{"cancel", fmt.Errorf("wrapped: %w", context.Canceled), domain.FailureCancelled},
		{"network", domain.ErrNetwork, domain.FailureNetwork},
		{"unknown", errors.New("boom"), domain.FailureNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.FailureKindOf(tt.err))
		})
	}
}

func TestFailureKindRetryable(t *testing.T) {
	assert.True(t, domain.FailureNetwork.Retryable())
	assert.True(t, domain.FailureTimeout.Retryable())
	assert.False(t, domain.FailureAuth.Retryable())
	assert.False(t, domain.FailureModelUnavailable.Retryable())
}

func TestBackendErrorWrapping(t *testing.T) {
	err := domain.NewBackendError("claude", fmt.Errorf("%w: bad key", domain.ErrAuth))
	assert.EqualError(t, err, "backend claude: authentication failed: bad key")
	assert.ErrorIs(t, err, domain.ErrAuth)

	again := domain.NewBackendError("claude", err)
	assert.Same(t, err, again)
	assert.Nil(t, domain.NewBackendError("claude", nil))
}

func TestWrapOp(t *testing.T) {
	assert.Nil(t, domain.WrapOp("op", nil))
	err := domain.WrapOp("load", domain.ErrConfigLoad)
	assert.ErrorIs(t, err, domain.ErrConfigLoad)
	assert.EqualError(t, err, "load: failed to load configuration")
}
