package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/goaq/pkg/config"
	"github.com/itohio/goaq/pkg/display"
	"github.com/itohio/goaq/pkg/gate"
	"github.com/itohio/goaq/pkg/monitor"
	"github.com/itohio/goaq/pkg/reading"
	"github.com/itohio/goaq/pkg/sensor"
	"github.com/itohio/goaq/pkg/telemetry"
)

// stepInterval is the wall-clock period between simulated ticks.
const stepInterval = 10 * time.Millisecond

func main() {
	var (
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		speedFlag  = flag.Int("speed", 1, "Simulation speed multiplier")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(2)
	}
	log, err := config.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	application := app.NewWithID("com.itohio.goaq")
	window := application.NewWindow("Air Quality Monitor")
	window.Resize(fyne.NewSize(640, 420))
	window.CenterOnScreen()

	state := &appState{
		cfg:        cfg,
		configPath: *configFlag,
		log:        log,
		window:     window,
		speed:      max(*speedFlag, 1),
		button:     &sensor.VirtualButton{},
		screen:     display.NewWidget(cfg.AirQuality, cfg.Display.Width),
		status:     widget.NewLabel("Stopped"),
	}
	state.status.Wrapping = fyne.TextWrapWord

	toolbar := createToolbar(state)
	content := container.NewBorder(toolbar, state.status, nil, nil, state.screen)

	window.SetContent(content)
	window.SetOnClosed(func() { state.stop() })
	window.ShowAndRun()
}

// simulation tracks a running monitor for graceful shutdown.
type simulation struct {
	cancel context.CancelFunc
	done   chan struct{}
	source *sensor.Simulated
}

// appState holds the application state.
type appState struct {
	cfg        *config.Config
	configPath string
	log        *slog.Logger
	window     fyne.Window

	button *sensor.VirtualButton
	screen *display.Widget
	status *widget.Label

	startBtn *widget.Button
	pressBtn *widget.Button
	powerBtn *widget.Button

	mu    sync.Mutex
	speed int
	sim   *simulation
}

// createToolbar creates the toolbar with Start, Settings, Button and particulate indicator.
func createToolbar(state *appState) fyne.CanvasObject {
	state.startBtn = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), func() {
		handleStart(state)
	})

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	state.pressBtn = widget.NewButton("Button", func() {
		handleButtonPress(state)
	})
	state.pressBtn.Disable()

	// Indicator only: lit while the particulate sensor is powered
	state.powerBtn = widget.NewButton("PM", nil)
	state.powerBtn.Disable()

	speed := widget.NewSelect([]string{"1x", "10x", "60x", "600x"}, func(s string) {
		var v int
		if _, err := fmt.Sscanf(s, "%dx", &v); err == nil {
			state.mu.Lock()
			state.speed = v
			state.mu.Unlock()
		}
	})
	speed.SetSelected(fmt.Sprintf("%dx", state.speed))

	return container.NewBorder(
		nil, nil,
		container.NewHBox(state.startBtn, settingsBtn, speed),
		container.NewHBox(state.pressBtn, state.powerBtn),
		nil,
	)
}

// handleStart starts or stops the simulated station.
func handleStart(state *appState) {
	state.mu.Lock()
	running := state.sim != nil
	state.mu.Unlock()

	if running {
		state.stop()
		state.startBtn.SetIcon(theme.MediaPlayIcon())
		state.pressBtn.Disable()
		updatePowerIndicator(state.powerBtn, false)
		state.status.SetText("Stopped")
		return
	}

	if err := state.cfg.Validate(); err != nil {
		dialog.ShowError(fmt.Errorf("invalid configuration: %w", err), state.window)
		return
	}
	state.start()
	state.startBtn.SetIcon(theme.MediaStopIcon())
	state.pressBtn.Enable()
}

// start runs the monitor against simulated sensors on a manual clock advanced by the
// selected speed.
func (s *appState) start() {
	clock := gate.NewManualClock(0)
	source := sensor.NewSimulated(s.cfg.Simulation, clock)

	settings := monitor.SettingsFromConfig(s.cfg)
	settings.CO2Preheat = 0

	m := monitor.New(settings, source,
		monitor.WithClock(clock),
		monitor.WithLogger(s.log),
		monitor.WithButton(s.button),
		monitor.WithRenderer(s.screen),
		monitor.WithSink(telemetry.NewLog(s.log.With("component", "telemetry"), slog.LevelDebug)),
	)

	var last reading.Composite
	powered := false
	m.OnUpdate(func(c reading.Composite) {
		on := source.Powered()
		if c == last && on == powered {
			return
		}
		last, powered = c, on
		text := fmt.Sprintf("%s\nquality: %s", c, s.cfg.AirQuality.Classify(c.CO2, c.TVOC, c.PM2_5))
		fyne.Do(func() {
			s.status.SetText(text)
			updatePowerIndicator(s.powerBtn, on)
		})
	})

	ctx, cancel := context.WithCancel(context.Background())
	sim := &simulation{cancel: cancel, done: make(chan struct{}), source: source}

	go func() {
		defer close(sim.done)
		if err := m.Init(ctx); err != nil {
			return
		}

		ticker := time.NewTicker(stepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mu.Lock()
				speed := s.speed
				s.mu.Unlock()
				clock.Advance(stepInterval * time.Duration(speed))
				m.Tick()
			}
		}
	}()

	s.mu.Lock()
	s.sim = sim
	s.mu.Unlock()
}

// stop cancels the running simulation and waits for it to exit.
func (s *appState) stop() {
	s.mu.Lock()
	sim := s.sim
	s.sim = nil
	s.mu.Unlock()

	if sim == nil {
		return
	}
	sim.cancel()
	<-sim.done
	_ = sim.source.Close()
}
