package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/itohio/goaq/pkg/config"
	"github.com/itohio/goaq/pkg/display"
	"github.com/itohio/goaq/pkg/gate"
	"github.com/itohio/goaq/pkg/monitor"
	"github.com/itohio/goaq/pkg/sensor"
)

func main() {
	var (
		configFlag    = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag      = flag.Bool("mock", false, "Use simulated sensors instead of hardware")
		logLevelFlag  = flag.String("log-level", "", "Log level override (debug, info, warn, error)")
		listPortsFlag = flag.Bool("list-ports", false, "List serial ports and exit")
	)
	flag.Parse()

	if *listPortsFlag {
		if err := listPorts(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(2)
	}
	if *logLevelFlag != "" {
		cfg.Log.Level = *logLevelFlag
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration:\n%v\n", err)
		os.Exit(2)
	}

	log, err := config.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *mockFlag, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("station stopped", "error", err)
		os.Exit(1)
	}
	log.Info("station stopped")
}

func listPorts() error {
	ports, err := sensor.Ports()
	if err != nil {
		return fmt.Errorf("failed to list serial ports: %w", err)
	}
	for _, p := range ports {
		if p.Description != "" {
			fmt.Printf("%s\t%s\n", p.Name, p.Description)
		} else {
			fmt.Println(p.Name)
		}
	}
	return nil
}

func run(ctx context.Context, cfg *config.Config, mock bool, log *slog.Logger) error {
	log.Info("starting station", "id", cfg.Station.ID, "name", cfg.Station.Name, "mock", mock)

	clock := gate.NewSystemClock()
	hw := openHardware(cfg, mock, clock, log)
	defer hw.Close()

	out := openOutputs(ctx, cfg, log)
	defer out.Close()

	opts := []monitor.Option{
		monitor.WithClock(clock),
		monitor.WithLogger(log),
		monitor.WithRenderer(hw.renderer),
		monitor.WithSink(out.sink),
		monitor.WithNotifier(out.notifier),
	}
	if hw.button != nil {
		opts = append(opts, monitor.WithButton(hw.button))
	}
	m := monitor.New(monitor.SettingsFromConfig(cfg), hw.source, opts...)

	if err := m.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	log.Info("station running")
	return m.Run(ctx)
}

// hardware holds the sensor source and local I/O.
type hardware struct {
	source   monitor.SensorSource
	button   monitor.Button
	renderer display.Renderer
	close    func() error
}

func (h *hardware) Close() {
	if h.close != nil {
		_ = h.close()
	}
}

func openHardware(cfg *config.Config, mock bool, clock gate.Clock, log *slog.Logger) *hardware {
	if mock {
		sim := sensor.NewSimulated(cfg.Simulation, clock)
		return &hardware{source: sim, renderer: display.Discard, close: sim.Close}
	}

	arr, err := sensor.OpenArray(cfg.Sensors, log)
	if err != nil {
		// Missing sensors report ErrNotPresent on every read; keep running with the rest.
		log.Warn("some sensors are unavailable", "error", err)
	}
	hw := &hardware{source: arr, renderer: display.Discard, close: arr.Close}

	if cfg.Sensors.ButtonPin != "" {
		if b, err := sensor.OpenButton(cfg.Sensors.ButtonPin); err != nil {
			log.Warn("button unavailable", "pin", cfg.Sensors.ButtonPin, "error", err)
		} else {
			hw.button = b
		}
	}

	if cfg.Display.Driver == "ssd1306" && arr.Bus != nil {
		oled, err := display.OpenOLED(arr.Bus, cfg.Display, cfg.AirQuality)
		if err != nil {
			log.Warn("display unavailable", "error", err)
		} else {
			hw.renderer = oled
		}
	}
	return hw
}
