package gate

import "time"

// Elapsed reports whether at least period milliseconds have passed between last and now.
// The subtraction wraps, so the result stays correct when the millisecond counter overflows.
func Elapsed(now, last, period uint32) bool {
	return now-last >= period
}

// Since returns the number of milliseconds between last and now, wrap-safe.
func Since(now, last uint32) uint32 {
	return now - last
}

// Timer guards one periodic activity.
type Timer struct {
	Last   uint32 // Timestamp of the last acted-on firing (ms)
	Period uint32 // Period (ms)
}

// NewTimer creates a timer whose first firing happens one period after start.
func NewTimer(period, start uint32) Timer {
	return Timer{Last: start, Period: period}
}

// Due reports whether the timer period has elapsed. It does not modify the timer.
func (t *Timer) Due(now uint32) bool {
	return Elapsed(now, t.Last, t.Period)
}

// Fire reports whether the timer period has elapsed and, if so, restarts the period at now.
func (t *Timer) Fire(now uint32) bool {
	if !t.Due(now) {
		return false
	}
	t.Last = now
	return true
}

// Reset restarts the period at now.
func (t *Timer) Reset(now uint32) {
	t.Last = now
}

// Millis converts a duration to a millisecond period. Negative durations yield zero.
func Millis(d time.Duration) uint32 {
	if d <= 0 {
		return 0
	}
	return uint32(d.Milliseconds())
}
