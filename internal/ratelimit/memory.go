// Package ratelimit bounds how many requests a single client may issue
// inside an admission window. It is the outermost gate of a dispatch:
// denied requests never reach validation or the delivery provider.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// staleAfterWindows controls lazy eviction: a client entry whose window
// started this many window durations ago is dropped on the next sweep.
const staleAfterWindows = 3

type window struct {
	start time.Time
	count int
}

// MemoryLimiter implements domain.RateLimiter with a fixed per-client
// window held in process memory. The read-check-increment sequence is
// guarded by a single mutex so concurrent requests cannot admit past
// the ceiling.
type MemoryLimiter struct {
	mu          sync.Mutex
	windows     map[string]*window
	maxRequests int
	duration    time.Duration
	now         func() time.Time
	lastSweep   time.Time
}

// NewMemoryLimiter creates a limiter using the wall clock.
func NewMemoryLimiter(windowDuration time.Duration, maxRequests int) *MemoryLimiter {
	return NewMemoryLimiterWithClock(windowDuration, maxRequests, time.Now)
}

// NewMemoryLimiterWithClock creates a limiter with an injectable clock.
func NewMemoryLimiterWithClock(windowDuration time.Duration, maxRequests int, now func() time.Time) *MemoryLimiter {
	return &MemoryLimiter{
		windows:     make(map[string]*window),
		maxRequests: maxRequests,
		duration:    windowDuration,
		now:         now,
		lastSweep:   now(),
	}
}

// Allow reports whether the client may issue another request in the
// current window. A client's entry is created lazily on first request;
// the window resets exactly when a full duration has elapsed since it
// began.
func (l *MemoryLimiter) Allow(_ context.Context, clientID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	w, ok := l.windows[clientID]
	if !ok {
		w = &window{start: now}
		l.windows[clientID] = w
	}

	if now.Sub(w.start) >= l.duration {
		w.start = now
		w.count = 0
	}

	if w.count >= l.maxRequests {
		return false, nil
	}

	w.count++
	return true, nil
}

// sweep evicts stale client entries at most once per window duration.
// Caller must hold the mutex.
func (l *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.duration {
		return
	}
	l.lastSweep = now

	cutoff := time.Duration(staleAfterWindows) * l.duration
	for clientID, w := range l.windows {
		if now.Sub(w.start) >= cutoff {
			delete(l.windows, clientID)
		}
	}
}
