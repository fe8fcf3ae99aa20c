// Package ratecontrol converts a time-varying target rate into
// inter-submission delays. It is deliberately independent of any load
// pattern implementation: callers supply the target TPS for "now" on each
// call and the controller paces accordingly.
package ratecontrol

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// idleInterval is the fixed suspension used when targetTps <= 0.
const idleInterval = 50 * time.Millisecond

// catchUpBound is the number of inter-arrival intervals a caller may fall
// behind before the controller fast-forwards the deadline instead of
// letting the caller race to catch up.
const catchUpBound = 10

// Controller paces submissions against a target rate. The zero value is
// not usable; construct with New.
//
// Thread safety: a Controller is intended to be driven by a single
// dispatch loop (WaitForNext is not safe for concurrent callers), but
// ElapsedMillis and MissedDeadlines may be read concurrently.
type Controller struct {
	startOnce sync.Once
	start     time.Time

	mu       sync.Mutex
	deadline time.Time
	started  bool

	missedDeadlines atomic.Int64
	warn            *WarnThrottle
}

// New creates a Controller. Start must be called before WaitForNext.
// Missed-deadline warnings are logged at most once per second.
func New() *Controller {
	return &Controller{warn: NewWarnThrottle(1)}
}

// Start records the monotonic start time. Safe to call multiple times;
// only the first call has effect.
func (c *Controller) Start() {
	c.startOnce.Do(func() {
		c.start = time.Now()
	})
}

// ElapsedMillis returns the monotonic elapsed milliseconds since Start.
// Returns 0 if Start has not been called.
func (c *Controller) ElapsedMillis() int64 {
	if c.start.IsZero() {
		return 0
	}
	return time.Since(c.start).Milliseconds()
}

// MissedDeadlines returns the number of times the controller fast-forwarded
// the deadline because the caller fell more than catchUpBound intervals
// behind.
func (c *Controller) MissedDeadlines() int64 {
	return c.missedDeadlines.Load()
}

// WaitForNext suspends the caller until the next scheduled submission
// instant and returns the elapsed milliseconds since Start. It never
// fails outright: cancellation via ctx returns immediately with ctx.Err()
// but gives no guarantee the deadline actually fired.
func (c *Controller) WaitForNext(ctx context.Context, targetTps float64) (int64, error) {
	c.mu.Lock()
	if !c.started {
		if c.deadline.IsZero() {
			c.deadline = time.Now()
		}
		c.started = true
	}

	if targetTps <= 0 {
		c.mu.Unlock()
		if err := sleep(ctx, idleInterval); err != nil {
			return c.ElapsedMillis(), err
		}
		return c.ElapsedMillis(), nil
	}

	delta := time.Duration(float64(time.Second) / targetTps)
	c.deadline = c.deadline.Add(delta)

	now := time.Now()
	catchUpThreshold := c.deadline.Add(time.Duration(catchUpBound) * delta)
	if now.After(catchUpThreshold) {
		c.deadline = now
		missed := c.missedDeadlines.Add(1)
		c.warn.Warnf("missed deadline: fell more than %d intervals behind target %.2f tps, fast-forwarding (total missed: %d)", catchUpBound, targetTps, missed)
	}

	wait := time.Until(c.deadline)
	c.mu.Unlock()

	if wait > 0 {
		if err := sleep(ctx, wait); err != nil {
			return c.ElapsedMillis(), err
		}
	}

	return c.ElapsedMillis(), nil
}

// sleep blocks for d or until ctx is done, whichever comes first.
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
