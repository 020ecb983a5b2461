package monitor

import (
	"github.com/itohio/goaq/pkg/display"
	"github.com/itohio/goaq/pkg/gate"
)

// DisplayState is the display on/off, auto-cycle and view selection state machine.
//
// A button press turns a dark display on; on a lit display it first stops auto-cycling
// and then steps through the views. Every press restarts the timeout window. When the
// timeout expires the display goes dark and auto-cycling is re-enabled.
type DisplayState struct {
	On      bool
	Cycling bool
	View    display.View

	alwaysOn bool
	cycle    gate.Timer
	timeout  gate.Timer
}

// NewDisplayState creates a lit, auto-cycling display showing the first view.
func NewDisplayState(cyclePeriod, timeoutPeriod, start uint32, alwaysOn bool) DisplayState {
	return DisplayState{
		On:       true,
		Cycling:  true,
		View:     display.TempHumidity,
		alwaysOn: alwaysOn,
		cycle:    gate.NewTimer(cyclePeriod, start),
		timeout:  gate.NewTimer(timeoutPeriod, start),
	}
}

// Press applies one accepted button press.
func (s *DisplayState) Press(now uint32) {
	switch {
	case !s.On:
		s.On = true
		s.cycle.Reset(now)
	case s.Cycling:
		s.Cycling = false
	default:
		s.View = s.View.Next()
	}
	s.timeout.Reset(now)
}

// Step advances the auto-cycle and timeout timers and reports whether anything changed.
func (s *DisplayState) Step(now uint32) bool {
	changed := false

	if s.On && s.Cycling && s.cycle.Fire(now) {
		s.View = s.View.Next()
		changed = true
	}

	if s.alwaysOn || !s.timeout.Fire(now) {
		return changed
	}
	if s.On || !s.Cycling {
		s.On = false
		s.Cycling = true
		changed = true
	}
	return changed
}
