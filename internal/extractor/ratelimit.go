package extractor

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	rateWindow   = 60 * time.Second
	minRateSleep = 1 * time.Second
	maxRateSleep = 5 * time.Second
)

// RateLimiter enforces the request budget of a rate-limited extraction
// provider: at most limit calls in any trailing 60-second window, with a
// minimum gap between consecutive calls. One instance is shared by every
// backend wrapping the same provider and is safe for concurrent
// submissions.
type RateLimiter struct {
	mu       sync.Mutex
	limit    int
	minGap   time.Duration
	calls    []time.Time
	lastCall time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRateLimiter creates a limiter with the given per-minute budget and
// minimum inter-call gap.
func NewRateLimiter(limit int, minGap time.Duration) *RateLimiter {
	return NewRateLimiterWithClock(limit, minGap, time.Now, sleepContext)
}

// NewRateLimiterWithClock creates a limiter with an injected clock and
// sleeper (for testing).
func NewRateLimiterWithClock(
	limit int,
	minGap time.Duration,
	now func() time.Time,
	sleep func(ctx context.Context, d time.Duration) error,
) *RateLimiter {
	if limit <= 0 {
		limit = 15
	}
	return &RateLimiter{limit: limit, minGap: minGap, now: now, sleep: sleep}
}

// Acquire blocks until a call slot is available, then records the call.
// It returns early with the context error on cancellation.
func (r *RateLimiter) Acquire(ctx context.Context) error {
	for {
		r.mu.Lock()
		now := r.now()
		r.prune(now)

		gapWait := time.Duration(0)
		if !r.lastCall.IsZero() {
			if since := now.Sub(r.lastCall); since < r.minGap {
				gapWait = r.minGap - since
			}
		}

		if len(r.calls) < r.limit && gapWait == 0 {
			r.calls = append(r.calls, now)
			r.lastCall = now
			r.mu.Unlock()
			return nil
		}

		wait := gapWait
		if len(r.calls) >= r.limit {
			// Sleep until the oldest call ages out of the window,
			// clamped so a skewed clock cannot stall us.
			until := r.calls[0].Add(rateWindow).Sub(now)
			if until < minRateSleep {
				until = minRateSleep
			}
			if until > maxRateSleep {
				until = maxRateSleep
			}
			if until > wait {
				wait = until
			}
			log.Printf("extractor.RateLimiter: window full (%d calls), sleeping %s", len(r.calls), wait)
		}
		r.mu.Unlock()

		if err := r.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// InWindow reports how many calls are recorded in the trailing window.
func (r *RateLimiter) InWindow() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune(r.now())
	return len(r.calls)
}

// prune drops window entries older than the trailing window. Caller
// holds the mutex.
func (r *RateLimiter) prune(now time.Time) {
	cutoff := now.Add(-rateWindow)
	i := 0
	for i < len(r.calls) && !r.calls[i].After(cutoff) {
		i++
	}
	if i > 0 {
		r.calls = append(r.calls[:0], r.calls[i:]...)
	}
}

// sleepContext sleeps for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
