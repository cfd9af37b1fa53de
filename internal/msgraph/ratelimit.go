package msgraph

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// defaultThrottleBackoff is applied when Graph throttles without naming a
// Retry-After duration.
const defaultThrottleBackoff = 60 * time.Second

// RateConfig tunes the sustained-rate token bucket.
type RateConfig struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// Burst is the maximum burst size.
	Burst int
}

// DefaultRateConfig returns conservative limits for Microsoft Graph.
// Graph allows ~10,000 requests per 10 minutes (~16.67/sec); staying at 10
// leaves headroom for other clients of the same app registration.
func DefaultRateConfig() RateConfig {
	return RateConfig{RequestsPerSecond: 10.0, Burst: 15}
}

// RateLimiter paces outbound requests with a token bucket and holds a
// shared backoff deadline when Graph signals throttling, so concurrent
// logical calls all honour the server's hint.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// NewRateLimiter creates a rate limiter from the given configuration,
// falling back to the defaults for unset values.
func NewRateLimiter(cfg RateConfig) *RateLimiter {
	def := DefaultRateConfig()
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = def.RequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}
}

// Wait blocks until a request may be sent without exceeding the sustained
// rate. It also respects any backoff deadline set by RecordThrottle.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if until := time.Until(retryAt); until > 0 {
		timer := time.NewTimer(until)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordThrottle sets a shared backoff deadline after a 429 response. The
// hint should come from the Retry-After header; a non-positive hint falls
// back to the Graph-documented default of 60 seconds.
func (r *RateLimiter) RecordThrottle(hint time.Duration) {
	if hint <= 0 {
		hint = defaultThrottleBackoff
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	deadline := time.Now().Add(hint)
	if deadline.After(r.retryAt) {
		r.retryAt = deadline
	}
}

// Allow reports whether a request could be sent immediately.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}
	return r.limiter.Allow()
}
