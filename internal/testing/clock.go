package testing

import (
	"sync"
	"time"
)

// DefaultTime is the time a new ManualClock starts at.
var DefaultTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// ManualClock provides a controllable clock for testing timelocks.
type ManualClock struct {
	mu      sync.RWMutex
	current time.Time
}

// NewManualClock creates a new ManualClock set to DefaultTime.
func NewManualClock() *ManualClock {
	return &ManualClock{current: DefaultTime}
}

// NewManualClockAt creates a new ManualClock set to the specified time.
func NewManualClockAt(t time.Time) *ManualClock {
	return &ManualClock{current: t}
}

// Now returns the current time on the clock.
func (c *ManualClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Unix returns the current time as unix seconds.
func (c *ManualClock) Unix() int64 {
	return c.Now().Unix()
}

// Advance moves the clock forward by the specified duration.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// Set sets the clock to a specific time.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
}
