package testutil

import (
	"sync"
	"time"
)

// Epoch is the first instant returned by a new FixedClock.
var Epoch = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// FixedClock is a deterministic wall clock for tests. Each call to Now
// returns the previous instant plus Step, starting at Epoch, so fix records
// get distinct and reproducible timestamps.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type FixedClock struct {
	mu    sync.Mutex
	start time.Time
	step  time.Duration
	calls int
}

// NewFixedClock creates a clock starting at Epoch that advances one second
// per call.
func NewFixedClock() *FixedClock {
	return NewFixedClockAt(Epoch, time.Second)
}

// NewFixedClockAt creates a clock starting at start and advancing by step.
// A zero step freezes the clock.
func NewFixedClockAt(start time.Time, step time.Duration) *FixedClock {
	return &FixedClock{start: start, step: step}
}

// Now returns the next instant.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.start.Add(time.Duration(c.calls) * c.step)
	c.calls++
	return t
}

// Calls returns how many times Now has been called.
func (c *FixedClock) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Reset rewinds the clock so the next Now returns the start instant again.
func (c *FixedClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = 0
}
