// Package testutil provides deterministic test doubles shared by fairway's
// internal packages.
package testutil

import (
	"sync"
	"time"
)

// SteppedClock is a thread-safe deterministic time source for tests.
//
// Each call to Now returns the current reading and then advances it by the
// configured step. With a zero step every reading is identical, which is
// how latest-wins tie-breaking is exercised.
type SteppedClock struct {
	mu      sync.Mutex
	current time.Time
	step    time.Duration
}

// NewSteppedClock creates a clock starting at start, advancing by step
// after every reading.
func NewSteppedClock(start time.Time, step time.Duration) *SteppedClock {
	return &SteppedClock{current: start, step: step}
}

// Now returns the current reading and advances the clock.
func (c *SteppedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.current
	c.current = c.current.Add(c.step)
	return now
}

// Set repositions the clock. Used to simulate out-of-order recording.
func (c *SteppedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
}
