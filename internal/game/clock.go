package game

import "time"

// Clock is the time source injected into every timing-sensitive
// component. Production code uses SystemClock; tests and the headless
// report command drive a ManualClock so debounce windows, charge
// durations and cooldowns can be simulated without real delays.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock (with monotonic readings).
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock is a hand-advanced clock for deterministic runs.
type ManualClock struct {
	now time.Time
}

// NewManualClock creates a ManualClock starting at the given instant.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time { return c.now }

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// Set jumps the clock to the given instant.
func (c *ManualClock) Set(t time.Time) { c.now = t }
