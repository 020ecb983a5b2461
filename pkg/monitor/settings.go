package monitor

import (
	"time"

	"github.com/itohio/goaq/pkg/airquality"
	"github.com/itohio/goaq/pkg/config"
	"github.com/itohio/goaq/pkg/reading"
	"github.com/itohio/goaq/pkg/sensor"
)

// Settings holds the schedule and calibration the monitor runs with.
type Settings struct {
	Update         time.Duration
	Debounce       time.Duration
	History        time.Duration
	Push           time.Duration
	Baseline       time.Duration
	DisplayCycle   time.Duration
	DisplayTimeout time.Duration
	LoopDelay      time.Duration

	WakeInterval time.Duration
	WakeDelay    time.Duration
	ReadPeriod   time.Duration

	CO2Preheat        time.Duration
	HistoryLength     int
	TemperatureOffset float32
	VOCBaseline       sensor.Baseline // Restored at Init when non-zero
	DisplayAlwaysOn   bool
	Thresholds        airquality.Thresholds

	Tags map[string]string // Attached to every telemetry point
}

// SettingsFromConfig extracts the monitor settings from a loaded configuration.
func SettingsFromConfig(cfg *config.Config) Settings {
	tags := map[string]string{"station": cfg.Station.ID}
	if cfg.Station.Name != "" {
		tags["name"] = cfg.Station.Name
	}
	if cfg.Station.Location != "" {
		tags["location"] = cfg.Station.Location
	}

	return Settings{
		Update:         cfg.Schedule.Update,
		Debounce:       cfg.Schedule.Debounce,
		History:        cfg.Schedule.History,
		Push:           cfg.Schedule.Push,
		Baseline:       cfg.Schedule.Baseline,
		DisplayCycle:   cfg.Schedule.DisplayCycle,
		DisplayTimeout: cfg.Schedule.DisplayTimeout,
		LoopDelay:      cfg.Schedule.LoopDelay,

		WakeInterval: cfg.Particulate.WakeInterval,
		WakeDelay:    cfg.Particulate.WakeDelay,
		ReadPeriod:   cfg.Particulate.ReadPeriod,

		CO2Preheat:        cfg.Sensors.CO2Preheat,
		HistoryLength:     cfg.History.Length,
		TemperatureOffset: cfg.Sensors.TemperatureOffset,
		VOCBaseline:       sensor.Baseline{ECO2: cfg.Sensors.Baseline.ECO2, TVOC: cfg.Sensors.Baseline.TVOC},
		DisplayAlwaysOn:   cfg.Display.AlwaysOn,
		Thresholds:        cfg.AirQuality,

		Tags: tags,
	}
}

// DefaultSettings returns the settings of the default configuration.
func DefaultSettings() Settings {
	return SettingsFromConfig(config.Default())
}

func (s Settings) historyLength() int {
	if s.HistoryLength <= 0 {
		return reading.DefaultHistoryLength
	}
	return s.HistoryLength
}
