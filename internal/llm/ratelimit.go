package llm

import (
	"context"
	"sync"
	"time"
)

// Throttle enforces a minimum interval between model calls so batch runs stay
// under the provider's per-minute quota. It is cooperative: callers Wait
// before each request and the throttle sleeps out the remainder of the
// interval.
type Throttle struct {
	interval time.Duration

	mu   sync.Mutex
	last time.Time
}

// NewThrottle builds a throttle allowing at most perMinute calls per minute.
// A non-positive value disables throttling.
func NewThrottle(perMinute int) *Throttle {
	var interval time.Duration
	if perMinute > 0 {
		interval = time.Minute / time.Duration(perMinute)
	}
	return &Throttle{interval: interval}
}

// Wait blocks until the next call slot opens or the context is cancelled.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil || t.interval <= 0 {
		return nil
	}
	t.mu.Lock()
	now := time.Now()
	next := t.last.Add(t.interval)
	if next.Before(now) {
		next = now
	}
	t.last = next
	t.mu.Unlock()

	d := time.Until(next)
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
