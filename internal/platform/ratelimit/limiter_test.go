package ratelimit

import (
	"testing"
	"time"
)

func newTestLimiter(start time.Time) (*Limiter, *time.Time) {
	now := start
	l := NewLimiter()
	l.now = func() time.Time { return now }
	return l, &now
}

func TestLimiter_AllowWithinWindow(t *testing.T) {
	t.Parallel()

	limiter, now := newTestLimiter(time.Unix(1_700_000_000, 0))

	if !limiter.Allow("scoreboard", 1, time.Minute) {
		t.Fatal("first call should be allowed")
	}
	if limiter.Allow("scoreboard", 1, time.Minute) {
		t.Fatal("second call inside the window should be denied")
	}

	*now = now.Add(time.Minute)
	if !limiter.Allow("scoreboard", 1, time.Minute) {
		t.Fatal("call after the window elapsed should open a fresh window")
	}
}

func TestLimiter_IndependentKeys(t *testing.T) {
	t.Parallel()

	limiter, _ := newTestLimiter(time.Unix(1_700_000_000, 0))

	if !limiter.Allow("a", 1, time.Minute) {
		t.Fatal("key a should be allowed")
	}
	if !limiter.Allow("b", 1, time.Minute) {
		t.Fatal("key b should not share key a's window")
	}
}

func TestLimiter_CountsUpToMax(t *testing.T) {
	t.Parallel()

	limiter, _ := newTestLimiter(time.Unix(1_700_000_000, 0))

	for i := 0; i < 3; i++ {
		if !limiter.Allow("k", 3, time.Minute) {
			t.Fatalf("call %d should be allowed", i+1)
		}
	}
	if limiter.Allow("k", 3, time.Minute) {
		t.Fatal("fourth call should be denied")
	}
}

func TestLimiter_InvalidInputsDenied(t *testing.T) {
	t.Parallel()

	limiter, _ := newTestLimiter(time.Unix(1_700_000_000, 0))

	if limiter.Allow("", 1, time.Minute) {
		t.Fatal("empty key should be denied")
	}
	if limiter.Allow("k", 0, time.Minute) {
		t.Fatal("zero max should be denied")
	}
	if limiter.Allow("k", 1, 0) {
		t.Fatal("zero window should be denied")
	}
}

func TestLimiter_SweepDropsExpiredWindows(t *testing.T) {
	t.Parallel()

	limiter, now := newTestLimiter(time.Unix(1_700_000_000, 0))

	limiter.Allow("old", 1, time.Minute)
	limiter.Allow("fresh", 1, time.Hour)

	*now = now.Add(2 * time.Minute)
	limiter.Sweep()

	limiter.mu.Lock()
	_, oldKept := limiter.windows["old"]
	_, freshKept := limiter.windows["fresh"]
	limiter.mu.Unlock()

	if oldKept {
		t.Fatal("expired window should have been swept")
	}
	if !freshKept {
		t.Fatal("live window should survive the sweep")
	}
}
