package delivery

import (
	"context"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/atriumcare/carecoord-backend/pkg/config"
)

// transientStatuses is the closed allow-list of HTTP statuses worth
// retrying. Anything else fails the attempt permanently.
var transientStatuses = map[int]struct{}{
	http.StatusRequestTimeout:      {},
	http.StatusTooManyRequests:     {},
	http.StatusInternalServerError: {},
	http.StatusBadGateway:          {},
	http.StatusServiceUnavailable:  {},
	http.StatusGatewayTimeout:      {},
}

// IsTransientStatus reports whether an HTTP status from a provider is
// worth another attempt.
func IsTransientStatus(status int) bool {
	_, ok := transientStatuses[status]
	return ok
}

// RetryPolicy applies exponential backoff with jitter between delivery
// attempts. Attempt numbers start at 1; the backoff before attempt n+1 is
// initial * 2^(n-1), jittered, capped at max.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaximumBackoff time.Duration
	JitterFactor   float64
}

// NewRetryPolicy builds a policy from config, clamping nonsense values.
func NewRetryPolicy(cfg config.DeliveryConfig) RetryPolicy {
	policy := RetryPolicy{
		MaxAttempts:    cfg.MaxAttempts,
		InitialBackoff: cfg.InitialBackoff,
		MaximumBackoff: cfg.MaximumBackoff,
		JitterFactor:   cfg.JitterFactor,
	}
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if policy.InitialBackoff <= 0 {
		policy.InitialBackoff = 250 * time.Millisecond
	}
	if policy.MaximumBackoff < policy.InitialBackoff {
		policy.MaximumBackoff = policy.InitialBackoff
	}
	if policy.JitterFactor < 0 || policy.JitterFactor > 1 {
		policy.JitterFactor = 0
	}
	return policy
}

// Backoff returns the delay to sleep after the given failed attempt.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}

	interval := float64(p.InitialBackoff) * math.Pow(2, float64(attempt-1))
	if p.JitterFactor > 0 {
		jitter := (rand.Float64()*2 - 1) * p.JitterFactor
		interval *= 1 + jitter
	}
	if interval > float64(p.MaximumBackoff) {
		interval = float64(p.MaximumBackoff)
	}
	return time.Duration(interval)
}

// attemptFunc runs one provider call. retryable is consulted only when err
// is non-nil; a false value stops the loop immediately.
type attemptFunc func(ctx context.Context) (retryable bool, err error)

// run executes fn up to MaxAttempts times, sleeping the backoff between
// attempts. Context cancellation aborts the wait and returns the last error.
func (p RetryPolicy) run(ctx context.Context, fn attemptFunc) error {
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		retryable, err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable || attempt == p.MaxAttempts {
			return lastErr
		}

		timer := time.NewTimer(p.Backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}
	}
	return lastErr
}
