package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/goaq/pkg/airquality"
)

// showSettingsDialog displays a settings dialog with tabs for the simulated station.
// Changes take effect on the next Start.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createStationTab(state),
		createScheduleTab(state),
		createParticulateTab(state),
		createAirQualityTab(state),
		createSimulationTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 500))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 500))
	d.Show()
}

// save validates and writes the configuration, reporting failures in a dialog.
func (s *appState) save() {
	if err := s.cfg.Validate(); err != nil {
		dialog.ShowError(fmt.Errorf("invalid configuration: %w", err), s.window)
		return
	}
	if err := s.cfg.Save(s.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), s.window)
	}
}

func durationEntry(d time.Duration) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(d.String())
	return e
}

func parseDuration(e *widget.Entry, dst *time.Duration) {
	if d, err := time.ParseDuration(e.Text); err == nil {
		*dst = d
	}
}

func uintEntry(v uint16) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(strconv.Itoa(int(v)))
	return e
}

func parseUint(e *widget.Entry, dst *uint16) {
	if v, err := strconv.ParseUint(e.Text, 10, 16); err == nil {
		*dst = uint16(v)
	}
}

func floatEntry(v float32, format string) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(fmt.Sprintf(format, v))
	return e
}

func parseFloat(e *widget.Entry, dst *float32) {
	if v, err := strconv.ParseFloat(e.Text, 32); err == nil {
		*dst = float32(v)
	}
}

// createStationTab creates the Station identity tab.
func createStationTab(state *appState) *container.TabItem {
	nameEntry := widget.NewEntry()
	nameEntry.SetText(state.cfg.Station.Name)

	locationEntry := widget.NewEntry()
	locationEntry.SetText(state.cfg.Station.Location)

	offsetEntry := floatEntry(state.cfg.Sensors.TemperatureOffset, "%.1f")

	alwaysOn := widget.NewCheck("", nil)
	alwaysOn.SetChecked(state.cfg.Display.AlwaysOn)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "ID", Widget: widget.NewLabel(state.cfg.Station.ID)},
			{Text: "Name", Widget: nameEntry},
			{Text: "Location", Widget: locationEntry},
			{Text: "Temperature Offset (°C)", Widget: offsetEntry},
			{Text: "Display Always On", Widget: alwaysOn},
		},
		OnSubmit: func() {
			state.cfg.Station.Name = nameEntry.Text
			state.cfg.Station.Location = locationEntry.Text
			parseFloat(offsetEntry, &state.cfg.Sensors.TemperatureOffset)
			state.cfg.Display.AlwaysOn = alwaysOn.Checked
			state.save()
		},
	}

	return container.NewTabItem("Station", form)
}

// createScheduleTab creates the Schedule tab with the periodic gates.
func createScheduleTab(state *appState) *container.TabItem {
	sc := &state.cfg.Schedule
	update := durationEntry(sc.Update)
	debounce := durationEntry(sc.Debounce)
	history := durationEntry(sc.History)
	push := durationEntry(sc.Push)
	baseline := durationEntry(sc.Baseline)
	cycle := durationEntry(sc.DisplayCycle)
	timeout := durationEntry(sc.DisplayTimeout)

	historyLength := widget.NewEntry()
	historyLength.SetText(strconv.Itoa(state.cfg.History.Length))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Update", Widget: update},
			{Text: "Button Debounce", Widget: debounce},
			{Text: "History Interval", Widget: history},
			{Text: "History Length", Widget: historyLength},
			{Text: "Telemetry Push", Widget: push},
			{Text: "VOC Baseline Read", Widget: baseline},
			{Text: "Display Cycle", Widget: cycle},
			{Text: "Display Timeout", Widget: timeout},
		},
		OnSubmit: func() {
			parseDuration(update, &sc.Update)
			parseDuration(debounce, &sc.Debounce)
			parseDuration(history, &sc.History)
			parseDuration(push, &sc.Push)
			parseDuration(baseline, &sc.Baseline)
			parseDuration(cycle, &sc.DisplayCycle)
			parseDuration(timeout, &sc.DisplayTimeout)
			if n, err := strconv.Atoi(historyLength.Text); err == nil {
				state.cfg.History.Length = n
			}
			state.save()
		},
	}

	return container.NewTabItem("Schedule", form)
}

// createParticulateTab creates the particulate duty cycle tab.
func createParticulateTab(state *appState) *container.TabItem {
	pc := &state.cfg.Particulate
	interval := durationEntry(pc.WakeInterval)
	delay := durationEntry(pc.WakeDelay)
	read := durationEntry(pc.ReadPeriod)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Wake Interval", Widget: interval},
			{Text: "Wake Delay", Widget: delay},
			{Text: "Read Period", Widget: read},
		},
		OnSubmit: func() {
			parseDuration(interval, &pc.WakeInterval)
			parseDuration(delay, &pc.WakeDelay)
			parseDuration(read, &pc.ReadPeriod)
			state.save()
		},
	}

	return container.NewTabItem("Particulate", form)
}

// createAirQualityTab creates the threshold table tab. Each row holds CO2, TVOC and PM2.5 limits.
func createAirQualityTab(state *appState) *container.TabItem {
	th := &state.cfg.AirQuality

	type row struct {
		label  string
		limits *airquality.Limits
		co2    *widget.Entry
		tvoc   *widget.Entry
		pm25   *widget.Entry
	}
	rows := []*row{
		{label: "Poor", limits: &th.Poor},
		{label: "Inferior", limits: &th.Inferior},
		{label: "Fair", limits: &th.Fair},
		{label: "Good", limits: &th.Good},
	}

	items := make([]*widget.FormItem, 0, len(rows)+1)
	for _, r := range rows {
		r.co2 = uintEntry(r.limits.CO2)
		r.tvoc = uintEntry(r.limits.TVOC)
		r.pm25 = uintEntry(r.limits.PM25)
		r.co2.SetPlaceHolder("CO2 ppm")
		r.tvoc.SetPlaceHolder("TVOC ppb")
		r.pm25.SetPlaceHolder("PM2.5")
		items = append(items, &widget.FormItem{
			Text:   r.label + " (CO2 / TVOC / PM2.5)",
			Widget: container.NewGridWithColumns(3, r.co2, r.tvoc, r.pm25),
		})
	}
	detected := uintEntry(th.CO2Threshold)
	items = append(items, &widget.FormItem{Text: "CO2 Detected (ppm)", Widget: detected})

	form := &widget.Form{
		Items: items,
		OnSubmit: func() {
			for _, r := range rows {
				parseUint(r.co2, &r.limits.CO2)
				parseUint(r.tvoc, &r.limits.TVOC)
				parseUint(r.pm25, &r.limits.PM25)
			}
			parseUint(detected, &th.CO2Threshold)
			state.save()
		},
	}

	return container.NewTabItem("Air Quality", form)
}

// createSimulationTab creates the simulated sensor tab.
func createSimulationTab(state *appState) *container.TabItem {
	sim := &state.cfg.Simulation

	seed := widget.NewEntry()
	seed.SetText(strconv.FormatInt(sim.Seed, 10))
	temperature := floatEntry(sim.Temperature, "%.1f")
	humidity := floatEntry(sim.Humidity, "%.1f")
	co2 := floatEntry(sim.CO2, "%.0f")
	tvoc := floatEntry(sim.TVOC, "%.0f")
	pm25 := floatEntry(sim.PM25, "%.1f")
	noise := floatEntry(sim.Noise, "%.3f")

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Seed", Widget: seed},
			{Text: "Temperature (°C)", Widget: temperature},
			{Text: "Humidity (%RH)", Widget: humidity},
			{Text: "CO2 (ppm)", Widget: co2},
			{Text: "TVOC (ppb)", Widget: tvoc},
			{Text: "PM2.5 (µg/m³)", Widget: pm25},
			{Text: "Noise", Widget: noise},
		},
		OnSubmit: func() {
			if v, err := strconv.ParseInt(seed.Text, 10, 64); err == nil {
				sim.Seed = v
			}
			parseFloat(temperature, &sim.Temperature)
			parseFloat(humidity, &sim.Humidity)
			parseFloat(co2, &sim.CO2)
			parseFloat(tvoc, &sim.TVOC)
			parseFloat(pm25, &sim.PM25)
			parseFloat(noise, &sim.Noise)
			state.save()
		},
	}

	return container.NewTabItem("Simulation", form)
}
