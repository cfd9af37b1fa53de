package msgraph

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/outlook-mcp/internal/logger"
)

// RetryConfig tunes the retry/backoff engine. All four knobs are injected
// configuration so operators can adjust them per deployment.
type RetryConfig struct {
	// MaxAttempts is the total attempt budget, including the first try.
	MaxAttempts int
	// InitialDelay is the wait before the second attempt.
	InitialDelay time.Duration
	// Multiplier grows the delay after every retried attempt.
	Multiplier float64
	// MaxDelay caps the computed delay.
	MaxDelay time.Duration
}

// DefaultRetryConfig returns the reference backoff settings.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  4,
		InitialDelay: time.Second,
		Multiplier:   2.0,
		MaxDelay:     30 * time.Second,
	}
}

// Response is the normalised outcome of one physical request attempt.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// attemptFunc performs one physical call attempt.
type attemptFunc func(ctx context.Context) (*Response, error)

// runWithRetry drives attemptFn through the retry state machine. Throttled
// responses (429) wait for the server's Retry-After hint when present,
// preferring it over the computed backoff; server errors (5xx) wait with
// the computed backoff; transport errors are retried the same way, with
// the last one propagated as-is when the budget runs out. Any other status
// is returned to the caller immediately, whatever its range. Exhausting
// the budget on a retryable status surfaces a terminal exhaustion error,
// never the raw status.
func runWithRetry(ctx context.Context, cfg RetryConfig, attempt attemptFunc) (*Response, error) {
	delay := cfg.InitialDelay

	for attempts := 1; ; attempts++ {
		resp, err := attempt(ctx)

		switch {
		case err != nil:
			if attempts >= cfg.MaxAttempts {
				return nil, fmt.Errorf("request failed after %d attempts: %w", attempts, err)
			}
			logger.Debug("msgraph: attempt %d/%d failed, retrying in %s: %v",
				attempts, cfg.MaxAttempts, delay, err)
			if werr := sleep(ctx, delay); werr != nil {
				return nil, werr
			}

		case resp.StatusCode == http.StatusTooManyRequests:
			if attempts >= cfg.MaxAttempts {
				return nil, exhausted(cfg.MaxAttempts, resp.StatusCode)
			}
			wait := delay
			if hint, ok := retryAfterHint(resp.Header); ok {
				// The server knows its own capacity; its hint wins.
				wait = hint
			}
			logger.Debug("msgraph: throttled on attempt %d/%d, retrying in %s",
				attempts, cfg.MaxAttempts, wait)
			if werr := sleep(ctx, wait); werr != nil {
				return nil, werr
			}

		case resp.StatusCode >= http.StatusInternalServerError && resp.StatusCode < 600:
			if attempts >= cfg.MaxAttempts {
				return nil, exhausted(cfg.MaxAttempts, resp.StatusCode)
			}
			logger.Debug("msgraph: server error %d on attempt %d/%d, retrying in %s",
				resp.StatusCode, attempts, cfg.MaxAttempts, delay)
			if werr := sleep(ctx, delay); werr != nil {
				return nil, werr
			}

		default:
			// Success, or a non-retryable status that surfaces immediately.
			return resp, nil
		}

		delay = nextDelay(delay, cfg)
	}
}

// exhausted builds the terminal error surfaced when the attempt budget is
// spent on retryable responses. It deliberately carries its own identity
// rather than re-surfacing the last attempt's raw status.
func exhausted(maxAttempts, lastStatus int) error {
	return fmt.Errorf("max retry attempts (%d) exceeded, last status %d: %w",
		maxAttempts, lastStatus, ErrRetriesExhausted)
}

// retryAfterHint reads the server's Retry-After header. Microsoft Graph
// sends the hint as a number of seconds.
func retryAfterHint(header http.Header) (time.Duration, bool) {
	raw := strings.TrimSpace(header.Get("Retry-After"))
	if raw == "" {
		return 0, false
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return 0, false
	}
	return time.Duration(seconds) * time.Second, true
}

// nextDelay grows the backoff delay, capped at the configured maximum. The
// delay never decreases across attempts.
func nextDelay(current time.Duration, cfg RetryConfig) time.Duration {
	next := time.Duration(float64(current) * cfg.Multiplier)
	if next > cfg.MaxDelay {
		next = cfg.MaxDelay
	}
	if next < current {
		next = current
	}
	return next
}

// sleep waits for the given duration unless ctx is cancelled first.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
