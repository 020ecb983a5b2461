package monitor

import "github.com/itohio/goaq/pkg/gate"

// Button is a momentary push button. Pressed reports the instantaneous level.
type Button interface {
	Pressed() bool
}

// Debouncer turns a bouncing button level into clean press events.
// A level is accepted once it has been stable for the debounce period.
type Debouncer struct {
	timer  gate.Timer
	raw    bool // Last sampled level
	stable bool // Last accepted level
}

// NewDebouncer creates a debouncer with the button released at start.
func NewDebouncer(period, start uint32) Debouncer {
	return Debouncer{timer: gate.NewTimer(period, start)}
}

// Step samples the button level and reports a rising edge of the debounced level.
func (d *Debouncer) Step(now uint32, pressed bool) bool {
	if pressed != d.raw {
		d.raw = pressed
		d.timer.Reset(now)
		return false
	}
	if d.raw == d.stable || !d.timer.Due(now) {
		return false
	}
	d.stable = d.raw
	return d.stable
}

// Pressed reports the debounced level.
func (d *Debouncer) Pressed() bool {
	return d.stable
}
