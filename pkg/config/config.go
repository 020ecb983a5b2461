package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/itohio/goaq/pkg/airquality"
)

// Config represents the station configuration.
type Config struct {
	Station     StationConfig         `yaml:"station"`
	Sensors     SensorsConfig         `yaml:"sensors"`
	Schedule    ScheduleConfig        `yaml:"schedule"`
	Particulate ParticulateConfig     `yaml:"particulate"`
	History     HistoryConfig         `yaml:"history"`
	Display     DisplayConfig         `yaml:"display"`
	AirQuality  airquality.Thresholds `yaml:"air_quality"`
	Telemetry   TelemetryConfig       `yaml:"telemetry"`
	Accessory   AccessoryConfig       `yaml:"accessory"`
	Log         LogConfig             `yaml:"log"`
	Simulation  SimulationConfig      `yaml:"simulation"`
}

// StationConfig identifies the station in telemetry and on the accessory surface.
type StationConfig struct {
	ID       string `yaml:"id"` // Generated when empty
	Name     string `yaml:"name"`
	Location string `yaml:"location"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// BaselineConfig contains the VOC sensor calibration words restored at startup.
type BaselineConfig struct {
	ECO2 uint16 `yaml:"eco2"`
	TVOC uint16 `yaml:"tvoc"`
}

// SensorsConfig describes the attached hardware.
type SensorsConfig struct {
	I2CBus            string         `yaml:"i2c_bus"`            // Empty selects the first available bus
	Hygrometer        string         `yaml:"hygrometer"`         // sht31 or aht20
	HygrometerAddress uint16         `yaml:"hygrometer_address"` // 0 selects the model default
	SGP30Address      uint16         `yaml:"sgp30_address"`
	Baseline          BaselineConfig `yaml:"baseline"`
	CO2               SerialConfig   `yaml:"co2"`
	CO2Preheat        time.Duration  `yaml:"co2_preheat"`
	Particulate       SerialConfig   `yaml:"particulate"`
	ParticulateEnable string         `yaml:"particulate_enable_pin"` // GPIO name, e.g. GPIO13
	ButtonPin         string         `yaml:"button_pin"`
	TemperatureOffset float32        `yaml:"temperature_offset"` // °C, negative compensates self-heating
}

// ScheduleConfig contains the periods of the cooperative loop.
type ScheduleConfig struct {
	Update         time.Duration `yaml:"update"`
	Debounce       time.Duration `yaml:"debounce"`
	History        time.Duration `yaml:"history"`
	Push           time.Duration `yaml:"push"`
	Baseline       time.Duration `yaml:"baseline"`
	DisplayCycle   time.Duration `yaml:"display_cycle"`
	DisplayTimeout time.Duration `yaml:"display_timeout"`
	LoopDelay      time.Duration `yaml:"loop_delay"` // Sleep between ticks
}

// ParticulateConfig contains the particulate sensor duty cycle.
type ParticulateConfig struct {
	WakeInterval time.Duration `yaml:"wake_interval"` // Between consecutive wakes
	WakeDelay    time.Duration `yaml:"wake_delay"`    // Fan spin-up before samples are trusted
	ReadPeriod   time.Duration `yaml:"read_period"`   // Sampling window after the wake delay
}

// HistoryConfig contains the history ring configuration.
type HistoryConfig struct {
	Length int `yaml:"length"`
}

// DisplayConfig contains display configuration.
type DisplayConfig struct {
	Driver   string `yaml:"driver"` // ssd1306 or none
	AlwaysOn bool   `yaml:"always_on"`
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	Rotated  bool   `yaml:"rotated"` // Mounted upside down
}

// InfluxConfig contains InfluxDB v2 connection parameters. Disabled when URL is empty.
type InfluxConfig struct {
	URL    string `yaml:"url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

// MQTTConfig contains MQTT broker parameters. Disabled when Broker is empty.
type MQTTConfig struct {
	Broker      string `yaml:"broker"` // host:port
	TopicPrefix string `yaml:"topic_prefix"`
	QoS         byte   `yaml:"qos"`
}

// NATSConfig contains NATS parameters. Disabled when URL is empty.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// TelemetryConfig contains telemetry sink configuration.
type TelemetryConfig struct {
	QueueSize int          `yaml:"queue_size"`
	Influx    InfluxConfig `yaml:"influx"`
	MQTT      MQTTConfig   `yaml:"mqtt"`
	NATS      NATSConfig   `yaml:"nats"`
}

// AccessoryConfig contains smart-home surface configuration.
type AccessoryConfig struct {
	Listen string     `yaml:"listen"` // Prometheus /metrics address, empty disables
	MQTT   MQTTConfig `yaml:"mqtt"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// SimulationConfig contains simulated sensor parameters.
type SimulationConfig struct {
	Seed        int64   `yaml:"seed"`
	Temperature float32 `yaml:"temperature"` // Raw sensor temperature the simulation reverts to (°C)
	Humidity    float32 `yaml:"humidity"`    // %RH
	CO2         float32 `yaml:"co2"`         // ppm
	TVOC        float32 `yaml:"tvoc"`        // ppb
	PM25        float32 `yaml:"pm2_5"`       // µg/m³
	Noise       float32 `yaml:"noise"`       // Relative noise amplitude
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Station: StationConfig{
			ID:   uuid.NewString(),
			Name: "Air Quality Monitor",
		},
		Sensors: SensorsConfig{
			Hygrometer:   "sht31",
			SGP30Address: 0x58,
			Baseline: BaselineConfig{
				ECO2: 0x941d,
				TVOC: 0x953f,
			},
			CO2: SerialConfig{
				Port: "/dev/ttyS0",
				Baud: 9600,
			},
			CO2Preheat: 60 * time.Second,
			Particulate: SerialConfig{
				Port: "/dev/ttyAMA1",
				Baud: 9600,
			},
			ParticulateEnable: "GPIO13",
			ButtonPin:         "GPIO17",
			TemperatureOffset: -13.5,
		},
		Schedule: ScheduleConfig{
			Update:         time.Second,
			Debounce:       20 * time.Millisecond,
			History:        time.Minute,
			Push:           30 * time.Second,
			Baseline:       time.Minute,
			DisplayCycle:   5 * time.Second,
			DisplayTimeout: 30 * time.Second,
			LoopDelay:      5 * time.Millisecond,
		},
		Particulate: ParticulateConfig{
			WakeInterval: 3 * time.Minute,
			WakeDelay:    25 * time.Second,
			ReadPeriod:   12 * time.Second,
		},
		History: HistoryConfig{
			Length: 60,
		},
		Display: DisplayConfig{
			Driver: "ssd1306",
			Width:  128,
			Height: 64,
		},
		AirQuality: airquality.DefaultThresholds(),
		Telemetry: TelemetryConfig{
			QueueSize: 64,
			Influx: InfluxConfig{
				Bucket: "air-quality",
			},
			MQTT: MQTTConfig{
				TopicPrefix: "goaq",
			},
			NATS: NATSConfig{
				Subject: "goaq.telemetry",
			},
		},
		Accessory: AccessoryConfig{
			MQTT: MQTTConfig{
				TopicPrefix: "goaq/accessory",
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Simulation: SimulationConfig{
			Seed:        1,
			Temperature: 35,
			Humidity:    28,
			CO2:         650,
			TVOC:        120,
			PM25:        8,
			Noise:       0.02,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
// An explicit zero in the YAML is indistinguishable from a missing field, so zero periods are
// replaced as well.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Station.ID == "" {
		c.Station.ID = def.Station.ID
	}
	if c.Station.Name == "" {
		c.Station.Name = def.Station.Name
	}

	if c.Sensors.Hygrometer == "" {
		c.Sensors.Hygrometer = def.Sensors.Hygrometer
	}
	if c.Sensors.SGP30Address == 0 {
		c.Sensors.SGP30Address = def.Sensors.SGP30Address
	}
	if c.Sensors.CO2.Baud == 0 {
		c.Sensors.CO2.Baud = def.Sensors.CO2.Baud
	}
	if c.Sensors.Particulate.Baud == 0 {
		c.Sensors.Particulate.Baud = def.Sensors.Particulate.Baud
	}

	setDuration(&c.Schedule.Update, def.Schedule.Update)
	setDuration(&c.Schedule.Debounce, def.Schedule.Debounce)
	setDuration(&c.Schedule.History, def.Schedule.History)
	setDuration(&c.Schedule.Push, def.Schedule.Push)
	setDuration(&c.Schedule.Baseline, def.Schedule.Baseline)
	setDuration(&c.Schedule.DisplayCycle, def.Schedule.DisplayCycle)
	setDuration(&c.Schedule.DisplayTimeout, def.Schedule.DisplayTimeout)
	setDuration(&c.Schedule.LoopDelay, def.Schedule.LoopDelay)

	setDuration(&c.Particulate.WakeInterval, def.Particulate.WakeInterval)
	setDuration(&c.Particulate.WakeDelay, def.Particulate.WakeDelay)
	setDuration(&c.Particulate.ReadPeriod, def.Particulate.ReadPeriod)

	if c.History.Length == 0 {
		c.History.Length = def.History.Length
	}

	if c.Display.Driver == "" {
		c.Display.Driver = def.Display.Driver
	}
	if c.Display.Width == 0 {
		c.Display.Width = def.Display.Width
	}
	if c.Display.Height == 0 {
		c.Display.Height = def.Display.Height
	}

	if c.AirQuality == (airquality.Thresholds{}) {
		c.AirQuality = def.AirQuality
	}

	if c.Telemetry.QueueSize == 0 {
		c.Telemetry.QueueSize = def.Telemetry.QueueSize
	}
	if c.Telemetry.MQTT.TopicPrefix == "" {
		c.Telemetry.MQTT.TopicPrefix = def.Telemetry.MQTT.TopicPrefix
	}
	if c.Telemetry.NATS.Subject == "" {
		c.Telemetry.NATS.Subject = def.Telemetry.NATS.Subject
	}
	if c.Accessory.MQTT.TopicPrefix == "" {
		c.Accessory.MQTT.TopicPrefix = def.Accessory.MQTT.TopicPrefix
	}

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
}

func setDuration(d *time.Duration, def time.Duration) {
	if *d == 0 {
		*d = def
	}
}

// Validate checks the configuration for values the station cannot run with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Sensors.Hygrometer {
	case "sht31", "aht20":
	default:
		errs = append(errs, fmt.Errorf("sensors.hygrometer: unknown model %q", c.Sensors.Hygrometer))
	}

	switch c.Display.Driver {
	case "ssd1306", "none":
	default:
		errs = append(errs, fmt.Errorf("display.driver: unknown driver %q", c.Display.Driver))
	}

	for _, p := range []struct {
		name string
		d    time.Duration
	}{
		{"schedule.update", c.Schedule.Update},
		{"schedule.debounce", c.Schedule.Debounce},
		{"schedule.history", c.Schedule.History},
		{"schedule.push", c.Schedule.Push},
		{"schedule.baseline", c.Schedule.Baseline},
		{"schedule.display_cycle", c.Schedule.DisplayCycle},
		{"schedule.display_timeout", c.Schedule.DisplayTimeout},
		{"particulate.wake_interval", c.Particulate.WakeInterval},
		{"particulate.read_period", c.Particulate.ReadPeriod},
	} {
		if p.d <= 0 {
			errs = append(errs, fmt.Errorf("%s: must be positive, got %s", p.name, p.d))
		}
	}
	if c.Particulate.WakeDelay < 0 {
		errs = append(errs, fmt.Errorf("particulate.wake_delay: must not be negative, got %s", c.Particulate.WakeDelay))
	}

	// The sensor has to be put back to sleep before the next wake is due.
	if c.Particulate.WakeInterval < c.Particulate.WakeDelay+c.Particulate.ReadPeriod {
		errs = append(errs, fmt.Errorf("particulate.wake_interval (%s) shorter than wake_delay + read_period (%s)",
			c.Particulate.WakeInterval, c.Particulate.WakeDelay+c.Particulate.ReadPeriod))
	}

	if c.History.Length <= 0 {
		errs = append(errs, fmt.Errorf("history.length: must be positive, got %d", c.History.Length))
	}

	if c.Telemetry.QueueSize < 0 {
		errs = append(errs, fmt.Errorf("telemetry.queue_size: must not be negative, got %d", c.Telemetry.QueueSize))
	}
	if c.Telemetry.MQTT.QoS > 2 || c.Accessory.MQTT.QoS > 2 {
		errs = append(errs, errors.New("mqtt qos must be 0, 1 or 2"))
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	return errors.Join(errs...)
}
