// Package ratelimit spaces outbound provider calls. Each external
// client owns its own Limiter instance; there is no shared global
// state, and the limiter is process-local (concurrent orchestrator
// instances would each pace independently).
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter enforces a minimum interval between successive calls,
// tracked by a single last-call timestamp. Wait blocks until the
// interval has elapsed; it never fails except on context cancellation.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	lastCall time.Time

	// Injectable for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Limiter allowing requestsPerMinute calls per minute.
// A non-positive rate disables limiting.
func New(requestsPerMinute int) *Limiter {
	var interval time.Duration
	if requestsPerMinute > 0 {
		interval = time.Minute / time.Duration(requestsPerMinute)
	}
	return &Limiter{
		interval: interval,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// Wait blocks the caller long enough that calls are spaced by at least
// the configured interval. Returns ctx.Err() if the context is
// cancelled while waiting.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.interval <= 0 {
		l.lastCall = l.now()
		return nil
	}

	if wait := l.interval - l.now().Sub(l.lastCall); wait > 0 {
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}

	l.lastCall = l.now()
	return nil
}

// Interval reports the configured minimum spacing between calls.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
