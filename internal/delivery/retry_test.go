package delivery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atriumcare/carecoord-backend/pkg/config"
)

func TestIsTransientStatus(t *testing.T) {
	t.Parallel()

	for _, status := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientStatus(status), "status %d", status)
	}
	for _, status := range []int{200, 202, 400, 401, 403, 404, 422} {
		assert.False(t, IsTransientStatus(status), "status %d", status)
	}
}

func TestNewRetryPolicyClampsValues(t *testing.T) {
	t.Parallel()

	policy := NewRetryPolicy(config.DeliveryConfig{
		MaxAttempts:    0,
		InitialBackoff: -time.Second,
		MaximumBackoff: 0,
		JitterFactor:   3,
	})

	assert.Equal(t, 1, policy.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, policy.InitialBackoff)
	assert.Equal(t, 250*time.Millisecond, policy.MaximumBackoff)
	assert.Equal(t, float64(0), policy.JitterFactor)
}

func TestRetryPolicyBackoffGrowsAndCaps(t *testing.T) {
	t.Parallel()

	policy := RetryPolicy{
		MaxAttempts:    5,
		InitialBackoff: 100 * time.Millisecond,
		MaximumBackoff: 350 * time.Millisecond,
	}

	assert.Equal(t, 100*time.Millisecond, policy.Backoff(1))
	assert.Equal(t, 200*time.Millisecond, policy.Backoff(2))
	assert.Equal(t, 350*time.Millisecond, policy.Backoff(3))
	assert.Equal(t, 350*time.Millisecond, policy.Backoff(10))
	assert.Equal(t, time.Duration(0), policy.Backoff(0))
}

func TestRetryPolicyBackoffJitterStaysBounded(t *testing.T) {
	t.Parallel()

	policy := RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: 100 * time.Millisecond,
		MaximumBackoff: time.Second,
		JitterFactor:   0.2,
	}

	for i := 0; i < 50; i++ {
		d := policy.Backoff(1)
		assert.GreaterOrEqual(t, d, 80*time.Millisecond)
		assert.LessOrEqual(t, d, 120*time.Millisecond)
	}
}

func TestRetryPolicyRunRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	policy := RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaximumBackoff: time.Millisecond,
	}

	calls := 0
	err := policy.run(context.Background(), func(context.Context) (bool, error) {
		calls++
		if calls < 3 {
			return true, errors.New("transient")
		}
		return false, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicyRunStopsOnPermanentFailure(t *testing.T) {
	t.Parallel()

	policy := RetryPolicy{
		MaxAttempts:    5,
		InitialBackoff: time.Millisecond,
		MaximumBackoff: time.Millisecond,
	}

	permanent := errors.New("permanent")
	calls := 0
	err := policy.run(context.Background(), func(context.Context) (bool, error) {
		calls++
		return false, permanent
	})

	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicyRunExhaustsAttempts(t *testing.T) {
	t.Parallel()

	policy := RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaximumBackoff: time.Millisecond,
	}

	transient := errors.New("transient")
	calls := 0
	err := policy.run(context.Background(), func(context.Context) (bool, error) {
		calls++
		return true, transient
	})

	require.ErrorIs(t, err, transient)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicyRunAbortsOnCancelledContext(t *testing.T) {
	t.Parallel()

	policy := RetryPolicy{
		MaxAttempts:    5,
		InitialBackoff: time.Minute,
		MaximumBackoff: time.Minute,
	}

	ctx, cancel := context.WithCancel(context.Background())
	transient := errors.New("transient")
	calls := 0

	done := make(chan error, 1)
	go func() {
		done <- policy.run(ctx, func(context.Context) (bool, error) {
			calls++
			return true, transient
		})
	}()

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, transient)
		assert.Equal(t, 1, calls)
	case <-time.After(time.Second):
		t.Fatal("run did not abort on context cancellation")
	}
}
