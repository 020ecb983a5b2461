package gate

import (
	"sync/atomic"
	"time"
)

// Clock is a monotonic millisecond counter that wraps at 2^32.
type Clock interface {
	Millis() uint32
}

// SystemClock counts milliseconds since it was created.
type SystemClock struct {
	start time.Time
}

// NewSystemClock creates a clock starting at zero.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Millis returns milliseconds since creation, truncated to 32 bits.
func (c *SystemClock) Millis() uint32 {
	return uint32(time.Since(c.start).Milliseconds())
}

// ManualClock is a clock that only moves when told to.
// It is used by tests and by the simulator to fast-forward schedules.
type ManualClock struct {
	now atomic.Uint32
}

// NewManualClock creates a clock set to start.
func NewManualClock(start uint32) *ManualClock {
	c := &ManualClock{}
	c.now.Store(start)
	return c
}

// Millis returns the current value.
func (c *ManualClock) Millis() uint32 {
	return c.now.Load()
}

// Set moves the clock to an absolute value.
func (c *ManualClock) Set(ms uint32) {
	c.now.Store(ms)
}

// Advance moves the clock forward, wrapping at 2^32.
func (c *ManualClock) Advance(d time.Duration) uint32 {
	return c.now.Add(uint32(d.Milliseconds()))
}
