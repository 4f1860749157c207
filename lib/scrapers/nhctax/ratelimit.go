package nhctax

import (
	"sync"
	"time"
)

// RateLimiter enforces a minimum spacing between consecutive outbound
// requests to the portal, shared process-wide across all search modes.
type RateLimiter struct {
	mu    sync.Mutex
	delay time.Duration
	last  time.Time
}

// NewRateLimiter returns a limiter spacing requests by delay. A zero or
// negative delay disables limiting entirely.
func NewRateLimiter(delay time.Duration) *RateLimiter {
	return &RateLimiter{delay: delay}
}

// Acquire blocks until the configured delay has elapsed since the last
// granted acquisition, then stamps the grant time. The check and stamp
// happen under one lock so two racing callers cannot both skip the
// wait.
func (l *RateLimiter) Acquire() {
	if l == nil || l.delay <= 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if wait := l.delay - time.Since(l.last); wait > 0 {
		time.Sleep(wait)
	}
	l.last = time.Now()
}
