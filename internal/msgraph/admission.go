package msgraph

import (
	"context"
	"sync"
	"time"
)

// AdmissionConfig bounds concurrent requests against one mailbox.
type AdmissionConfig struct {
	// MaxConcurrent is the admission ceiling: the number of logical calls
	// allowed in flight at once.
	MaxConcurrent int
	// Window is how long admission timestamps are retained for throughput
	// accounting.
	Window time.Duration
	// PollInterval is how often a saturated caller re-checks for a free
	// slot.
	PollInterval time.Duration
}

// DefaultAdmissionConfig returns the reference limits. Microsoft Graph
// rejects more than 4 concurrent requests against a single mailbox.
func DefaultAdmissionConfig() AdmissionConfig {
	return AdmissionConfig{
		MaxConcurrent: 4,
		Window:        time.Minute,
		PollInterval:  100 * time.Millisecond,
	}
}

// AdmissionController bounds the number of in-flight requests and keeps a
// sliding window of recent admission timestamps. The window is accounting,
// not a limiter: the hard bound is the concurrency count. One instance is
// shared by every call made through a client.
type AdmissionController struct {
	mu     sync.Mutex
	cfg    AdmissionConfig
	active int
	window []time.Time
}

// NewAdmissionController creates an admission controller, falling back to
// the defaults for unset values.
func NewAdmissionController(cfg AdmissionConfig) *AdmissionController {
	def := DefaultAdmissionConfig()
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = def.MaxConcurrent
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	return &AdmissionController{cfg: cfg}
}

// Acquire blocks until a concurrency slot is free or ctx is cancelled.
// Every successful Acquire must be paired with exactly one Release on
// every exit path of the guarded call; a missed Release leaks the slot and
// eventually starves all callers.
func (a *AdmissionController) Acquire(ctx context.Context) error {
	for {
		if a.tryAcquire() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(a.cfg.PollInterval):
		}
	}
}

// tryAcquire claims a slot when one is free. Entries older than the window
// are purged before every check so the accounting never reports stale
// admissions.
func (a *AdmissionController) tryAcquire() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := time.Now()
	a.purgeLocked(now)

	if a.active >= a.cfg.MaxConcurrent {
		return false
	}
	a.active++
	a.window = append(a.window, now)
	return true
}

// Release frees a concurrency slot.
func (a *AdmissionController) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.active > 0 {
		a.active--
	}
}

// Active returns the number of currently admitted callers.
func (a *AdmissionController) Active() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// RecentRequests returns how many admissions happened inside the sliding
// window.
func (a *AdmissionController) RecentRequests() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.purgeLocked(time.Now())
	return len(a.window)
}

// purgeLocked drops window entries older than the configured window.
// Callers must hold mu. Timestamps are appended in order, so the slice
// stays sorted and a prefix scan suffices.
func (a *AdmissionController) purgeLocked(now time.Time) {
	cutoff := now.Add(-a.cfg.Window)
	keep := 0
	for keep < len(a.window) && !a.window[keep].After(cutoff) {
		keep++
	}
	if keep > 0 {
		a.window = append(a.window[:0], a.window[keep:]...)
	}
}
