package monitor

import (
	"log/slog"

	"github.com/itohio/goaq/pkg/gate"
	"github.com/itohio/goaq/pkg/reading"
)

// DutyState is the particulate sensor power state.
type DutyState uint8

const (
	Asleep        DutyState = iota // Powered off
	AwakeWaiting                   // Powered, fan spinning up
	AwakeSampling                  // Powered, samples are accumulated
)

func (s DutyState) String() string {
	switch s {
	case Asleep:
		return "asleep"
	case AwakeWaiting:
		return "waiting"
	case AwakeSampling:
		return "sampling"
	default:
		return "unknown"
	}
}

// DutyCycle powers the particulate sensor for a short window every wake interval and
// averages the samples read inside the window.
//
// Timeline relative to a wake at t0:
//
//	t0                   power on
//	t0+delay             start accumulating
//	t0+delay+read        power off, finalize
//	t0+interval          next wake
type DutyCycle struct {
	interval uint32
	delay    uint32
	read     uint32

	power func(on bool) error
	log   *slog.Logger

	state    DutyState
	lastWake uint32
	started  bool
	done     bool
	acc      reading.Accumulator
}

// NewDutyCycle creates a duty cycle that wakes on its first step.
// power switches the sensor supply; failures are logged and do not stop the schedule.
func NewDutyCycle(interval, delay, read uint32, power func(on bool) error, log *slog.Logger) *DutyCycle {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &DutyCycle{
		interval: interval,
		delay:    delay,
		read:     read,
		power:    power,
		log:      log,
	}
}

// State returns the current state.
func (d *DutyCycle) State() DutyState {
	return d.state
}

// Count returns the number of samples accumulated in the current window.
func (d *DutyCycle) Count() int {
	return d.acc.Count()
}

// Step advances the state machine. Several transitions may happen in one step when steps
// are sparse. It returns the window average when a cycle finished with at least one sample.
func (d *DutyCycle) Step(now uint32) (reading.Particulate, bool) {
	for {
		switch d.state {
		case Asleep:
			if d.started && !gate.Elapsed(now, d.lastWake, d.interval) {
				return reading.Particulate{}, false
			}
			d.started = true
			d.lastWake = now
			d.done = false
			d.acc.Reset()
			d.switchPower(true)
			d.state = AwakeWaiting

		case AwakeWaiting:
			if !gate.Elapsed(now, d.lastWake, d.delay) {
				return reading.Particulate{}, false
			}
			d.state = AwakeSampling

		case AwakeSampling:
			if d.done || !gate.Elapsed(now, d.lastWake, d.delay+d.read) {
				return reading.Particulate{}, false
			}
			d.switchPower(false)
			d.state = Asleep
			d.done = true

			avg, ok := d.acc.Finalize()
			d.log.Debug("particulate cycle finished", "samples", d.acc.Count(), "average", avg)
			d.acc.Reset()
			return avg, ok
		}
	}
}

// Offer accumulates p if now falls inside the read window and reports whether it was used.
func (d *DutyCycle) Offer(now uint32, p reading.Particulate) bool {
	if d.state != AwakeSampling {
		return false
	}
	since := gate.Since(now, d.lastWake)
	if since < d.delay || since >= d.delay+d.read {
		return false
	}
	d.acc.Add(p)
	return true
}

func (d *DutyCycle) switchPower(on bool) {
	if d.power == nil {
		return
	}
	if err := d.power(on); err != nil {
		d.log.Error("failed to switch particulate sensor power", "on", on, "error", err)
	}
}
