package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// Limiter is a fixed-window admission gate for outbound calls.
// Denied callers must skip or retry later; the limiter never queues.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]window
	now     func() time.Time
}

func NewLimiter() *Limiter {
	return NewLimiterWithClock(time.Now)
}

// NewLimiterWithClock injects the time source, letting callers pin windows
// to a controlled clock.
func NewLimiterWithClock(now func() time.Time) *Limiter {
	if now == nil {
		now = time.Now
	}
	return &Limiter{
		windows: make(map[string]window),
		now:     now,
	}
}

// Allow reports whether one more request under key fits inside the current
// window. The first call for a key, or any call at/after the window reset
// instant, opens a fresh window with count=1.
func (l *Limiter) Allow(key string, maxRequests int, windowDuration time.Duration) bool {
	if key == "" || maxRequests <= 0 || windowDuration <= 0 {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.windows[key]
	if !ok || !now.Before(entry.resetAt) {
		l.windows[key] = window{count: 1, resetAt: now.Add(windowDuration)}
		return true
	}

	if entry.count >= maxRequests {
		return false
	}

	entry.count++
	l.windows[key] = entry
	return true
}

// Sweep removes expired windows, bounding memory for churning key sets.
func (l *Limiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, entry := range l.windows {
		if !now.Before(entry.resetAt) {
			delete(l.windows, key)
		}
	}
}

// RunSweeper sweeps on the given interval until ctx is cancelled.
func (l *Limiter) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}
