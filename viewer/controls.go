package main

import (
	"time"

	"fyne.io/fyne/v2/widget"
)

// pressDuration is how long the virtual button is held; longer than any debounce period.
const pressDuration = 150 * time.Millisecond

// handleButtonPress holds the virtual button down for a moment.
// At high simulation speeds the hold spans many simulated debounce periods, which is still
// a single press.
func handleButtonPress(state *appState) {
	state.button.Set(true)
	time.AfterFunc(pressDuration, func() {
		state.button.Set(false)
	})
}

// updatePowerIndicator shows whether the particulate sensor is powered.
func updatePowerIndicator(btn *widget.Button, on bool) {
	if on {
		btn.Importance = widget.HighImportance
	} else {
		btn.Importance = widget.MediumImportance
	}
	btn.Refresh()
}
