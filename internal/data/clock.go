package data

import (
	"sync"
	"time"
)

// Clock provides the current instant and can be mocked for testing.
// All scheduler arithmetic uses naive UTC with microsecond precision.
type Clock interface {
	// Now returns the current UTC time truncated to microseconds.
	Now() time.Time
}

// RealClock implements Clock using the system wall clock.
type RealClock struct{}

// Now returns the current system time in UTC, truncated to microseconds.
func (RealClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// FixedClock implements Clock with a controllable time for testing.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock creates a FixedClock pinned at the given time.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{now: t.UTC().Truncate(time.Microsecond)}
}

// Now returns the fixed time.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set pins the clock to a new time.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t.UTC().Truncate(time.Microsecond)
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
