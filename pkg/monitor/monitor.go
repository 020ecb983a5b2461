// Package monitor runs the station's cooperative sampling loop.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/itohio/goaq/pkg/accessory"
	"github.com/itohio/goaq/pkg/display"
	"github.com/itohio/goaq/pkg/gate"
	"github.com/itohio/goaq/pkg/psychro"
	"github.com/itohio/goaq/pkg/reading"
	"github.com/itohio/goaq/pkg/sensor"
	"github.com/itohio/goaq/pkg/telemetry"
)

// SensorSource provides the sensor readings and controls.
// ReadCO2 and ReadParticulate return sensor.ErrNoData when nothing new arrived.
type SensorSource interface {
	ReadTemperatureHumidity() (tRaw, hRaw float32, err error)
	ReadVOC(absHumidity float32) (sensor.VOC, error)
	ReadCO2() (uint16, error)
	ReadParticulate() (reading.Particulate, error)
	SetParticulatePower(on bool) error
	VOCBaseline() (sensor.Baseline, error)
	SetVOCBaseline(b sensor.Baseline) error
	SetCO2AutoCalibration(on bool) error
}

var (
	_ SensorSource = (*sensor.Array)(nil)
	_ SensorSource = (*sensor.Simulated)(nil)
)

// Option configures a Monitor.
type Option func(*Monitor)

// WithClock replaces the system millisecond clock.
func WithClock(c gate.Clock) Option {
	return func(m *Monitor) { m.clock = c }
}

// WithButton attaches the display button.
func WithButton(b Button) Option {
	return func(m *Monitor) { m.button = b }
}

// WithRenderer attaches the display renderer.
func WithRenderer(r display.Renderer) Option {
	return func(m *Monitor) { m.renderer = r }
}

// WithSink attaches the telemetry sink. It must not block.
func WithSink(s telemetry.Sink) Option {
	return func(m *Monitor) { m.sink = s }
}

// WithNotifier attaches the accessory notifier.
func WithNotifier(n accessory.Notifier) Option {
	return func(m *Monitor) { m.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Monitor) {
		if l != nil {
			m.log = l
		}
	}
}

// WithWallClock replaces the time source used for telemetry timestamps.
func WithWallClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// Monitor owns all station state and drives the sensors, display and outputs.
// Tick must be called from a single goroutine; the accessors are safe for concurrent use.
type Monitor struct {
	settings Settings
	source   SensorSource
	clock    gate.Clock
	button   Button
	renderer display.Renderer
	sink     telemetry.Sink
	notifier accessory.Notifier
	log      *slog.Logger
	now      func() time.Time

	// State (protected by mu)
	mu       sync.RWMutex
	current  reading.Composite
	history  *reading.Ring
	display  DisplayState
	baseline sensor.Baseline

	debounce    Debouncer
	particulate *DutyCycle
	update      gate.Timer
	baselineT   gate.Timer
	historyT    gate.Timer
	push        gate.Timer
	first       bool

	callbacks []func(reading.Composite)
	cbMu      sync.RWMutex
}

// New creates a monitor reading from source.
func New(settings Settings, source SensorSource, opts ...Option) *Monitor {
	m := &Monitor{
		settings: settings,
		source:   source,
		clock:    gate.NewSystemClock(),
		renderer: display.Discard,
		sink:     telemetry.Discard,
		notifier: accessory.Discard,
		log:      slog.New(slog.DiscardHandler),
		now:      time.Now,
		history:  reading.NewRing(settings.historyLength()),
		first:    true,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.particulate = NewDutyCycle(
		gate.Millis(settings.WakeInterval),
		gate.Millis(settings.WakeDelay),
		gate.Millis(settings.ReadPeriod),
		source.SetParticulatePower,
		m.log.With("sensor", "particulate"),
	)
	m.resetTimers(m.clock.Millis())
	return m
}

func (m *Monitor) resetTimers(now uint32) {
	s := m.settings
	m.debounce = NewDebouncer(gate.Millis(s.Debounce), now)
	m.update = gate.NewTimer(gate.Millis(s.Update), now)
	m.baselineT = gate.NewTimer(gate.Millis(s.Baseline), now)
	m.historyT = gate.NewTimer(gate.Millis(s.History), now)
	m.push = gate.NewTimer(gate.Millis(s.Push), now)
	m.display = NewDisplayState(gate.Millis(s.DisplayCycle), gate.Millis(s.DisplayTimeout), now, s.DisplayAlwaysOn)
}

// Init restores sensor calibration, powers the particulate sensor down and waits for the
// CO2 sensor to preheat. Progress is shown when the renderer supports it.
// Init returns ctx.Err() if the preheat is cancelled.
func (m *Monitor) Init(ctx context.Context) error {
	if b := m.settings.VOCBaseline; b != (sensor.Baseline{}) {
		if err := m.source.SetVOCBaseline(b); err != nil {
			m.log.Warn("failed to restore voc baseline", "baseline", b, "error", err)
		} else {
			m.log.Info("voc baseline restored", "baseline", b)
		}
	}
	if err := m.source.SetCO2AutoCalibration(false); err != nil {
		m.log.Warn("failed to disable co2 auto calibration", "error", err)
	}
	if err := m.source.SetParticulatePower(false); err != nil {
		m.log.Warn("failed to power off particulate sensor", "error", err)
	}

	if err := m.preheat(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	m.resetTimers(m.clock.Millis())
	m.first = true
	m.mu.Unlock()
	return nil
}

func (m *Monitor) preheat(ctx context.Context) error {
	total := m.settings.CO2Preheat
	if total <= 0 {
		return nil
	}
	progress, _ := m.renderer.(display.Progress)
	m.log.Info("preheating co2 sensor", "duration", total)

	start := time.Now()
	ticker := time.NewTicker(min(time.Second, total))
	defer ticker.Stop()

	for {
		elapsed := time.Since(start)
		if progress != nil {
			label := fmt.Sprintf("Preheat %ds", int((total - min(elapsed, total)).Seconds()))
			if err := progress.Progress(label, float32(elapsed)/float32(total)); err != nil {
				m.log.Warn("failed to render progress", "error", err)
			}
		}
		if elapsed >= total {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick runs one pass of the cooperative loop. It never waits on anything but the sensors'
// short bus transactions.
func (m *Monitor) Tick() {
	m.mu.Lock()

	now := m.clock.Millis()
	changed := false

	if m.button != nil && m.debounce.Step(now, m.button.Pressed()) {
		m.display.Press(now)
		m.log.Debug("button pressed", "on", m.display.On, "cycling", m.display.Cycling, "view", m.display.View)
		changed = true
	}

	updated := false
	if m.first || m.update.Fire(now) {
		if m.first {
			m.update.Reset(now)
		}
		m.sample(now)
		updated = true
		changed = true
	}

	var current reading.Composite
	if changed {
		current = m.current
		if err := m.renderer.Render(current, m.history, m.display.View, m.display.On); err != nil {
			m.log.Warn("failed to render", "error", err)
		}
	}
	m.mu.Unlock()

	if updated {
		m.notifyCallbacks(current)
	}
}

// sample performs the update-gate work. Called with mu held.
func (m *Monitor) sample(now uint32) {
	m.readClimate()
	m.readVOC()
	m.readCO2()
	m.stepParticulate(now)

	if m.baselineT.Fire(now) {
		b, err := m.source.VOCBaseline()
		if err != nil {
			m.logReadError("failed to read voc baseline", err)
		} else {
			m.baseline = b
			m.log.Info("voc baseline", "baseline", b)
		}
	}

	if m.push.Fire(now) {
		c := m.current
		m.emit(telemetry.ChannelTemperature, map[string]float64{
			"temperature": float64(c.Temperature),
			"dew_point":   float64(c.DewPoint),
		})
		m.emit(telemetry.ChannelHumidity, map[string]float64{
			"humidity":          float64(c.Humidity),
			"absolute_humidity": float64(c.AbsoluteHumidity),
		})
		m.emit(telemetry.ChannelVOC, map[string]float64{
			"tvoc": float64(c.TVOC),
			"eco2": float64(c.ECO2),
		})
	}

	if m.first || m.historyT.Fire(now) {
		if m.first {
			m.historyT.Reset(now)
		}
		m.history.Push(m.current)
	}
	m.first = false

	accessory.Publish(m.notifier, m.current, m.settings.Thresholds)

	m.display.Step(now)

	m.log.Debug("reading",
		"temperature", m.current.Temperature,
		"humidity", m.current.Humidity,
		"dew_point", m.current.DewPoint,
		"absolute_humidity", m.current.AbsoluteHumidity,
		"tvoc", m.current.TVOC,
		"eco2", m.current.ECO2,
		"co2", m.current.CO2,
		"pm2_5", m.current.PM2_5,
		"particulate", m.particulate.State(),
		"quality", m.settings.Thresholds.Classify(m.current.CO2, m.current.TVOC, m.current.PM2_5),
	)
}

func (m *Monitor) readClimate() {
	t, h, err := m.source.ReadTemperatureHumidity()
	if err != nil {
		m.logReadError("failed to read temperature and humidity", err)
		return
	}
	d, err := psychro.Compensate(t, h, m.settings.TemperatureOffset)
	if err != nil {
		m.log.Warn("rejected humidity reading", "temperature", t, "humidity", h, "error", err)
		return
	}
	m.current.TemperatureRaw = t
	m.current.HumidityRaw = h
	m.current.Temperature = d.Temperature
	m.current.Humidity = d.Humidity
	m.current.AbsoluteHumidity = d.AbsoluteHumidity
	m.current.DewPoint = d.DewPoint
}

func (m *Monitor) readVOC() {
	voc, err := m.source.ReadVOC(m.current.AbsoluteHumidity)
	if err != nil {
		m.logReadError("failed to read voc", err)
		return
	}
	m.current.TVOC = voc.TVOC
	m.current.ECO2 = voc.ECO2
}

func (m *Monitor) readCO2() {
	co2, err := m.source.ReadCO2()
	if err != nil {
		m.logReadError("failed to read co2", err)
		return
	}
	m.current.CO2 = co2
	m.emit(telemetry.ChannelCO2, map[string]float64{"co2": float64(co2)})
}

func (m *Monitor) stepParticulate(now uint32) {
	if avg, ok := m.particulate.Step(now); ok {
		m.current.Apply(avg)
		m.emit(telemetry.ChannelParticulate, map[string]float64{
			"pm1_0":   float64(avg.PM1_0),
			"pm2_5":   float64(avg.PM2_5),
			"pm10":    float64(avg.PM10),
			"over0_3": float64(avg.Counts.Over0_3),
			"over0_5": float64(avg.Counts.Over0_5),
			"over1_0": float64(avg.Counts.Over1_0),
			"over2_5": float64(avg.Counts.Over2_5),
			"over5_0": float64(avg.Counts.Over5_0),
			"over10":  float64(avg.Counts.Over10),
		})
	}

	p, err := m.source.ReadParticulate()
	if err != nil {
		m.logReadError("failed to read particulate", err)
		return
	}
	m.particulate.Offer(now, p)
}

// logReadError logs a sensor failure. Missing data and absent sensors are expected and only
// logged at debug level.
func (m *Monitor) logReadError(msg string, err error) {
	if errors.Is(err, sensor.ErrNoData) || errors.Is(err, sensor.ErrNotPresent) {
		m.log.Debug(msg, "error", err)
		return
	}
	m.log.Warn(msg, "error", err)
}

func (m *Monitor) emit(channel string, fields map[string]float64) {
	p := telemetry.Point{
		Channel: channel,
		Fields:  fields,
		Tags:    maps.Clone(m.settings.Tags),
		Time:    m.now(),
	}
	if err := m.sink.Emit(p); err != nil {
		m.log.Warn("failed to emit telemetry", "channel", channel, "error", err)
	}
}

// Run calls Tick every loop delay until ctx is cancelled. On exit the particulate sensor is
// powered down and the display blanked.
func (m *Monitor) Run(ctx context.Context) error {
	delay := m.settings.LoopDelay
	if delay <= 0 {
		delay = 5 * time.Millisecond
	}
	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.shutdown()
			return ctx.Err()
		case <-ticker.C:
			m.Tick()
		}
	}
}

func (m *Monitor) shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.source.SetParticulatePower(false); err != nil {
		m.log.Warn("failed to power off particulate sensor", "error", err)
	}
	if err := m.renderer.Render(m.current, m.history, m.display.View, false); err != nil {
		m.log.Warn("failed to blank display", "error", err)
	}
}

// Current returns the latest composite reading.
func (m *Monitor) Current() reading.Composite {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// History returns a copy of the history, oldest first. It is empty before the first update.
func (m *Monitor) History() []reading.Composite {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Collect(m.history.All())
}

// Display returns the display state.
func (m *Monitor) Display() DisplayState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.display
}

// Baseline returns the last VOC baseline read from the sensor.
func (m *Monitor) Baseline() sensor.Baseline {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.baseline
}

// Particulate returns the duty-cycle state.
func (m *Monitor) Particulate() DutyState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.particulate.State()
}

// OnUpdate registers a callback invoked after every update with the new reading.
// The callback runs on the Tick goroutine and should return quickly.
func (m *Monitor) OnUpdate(callback func(reading.Composite)) {
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

func (m *Monitor) notifyCallbacks(c reading.Composite) {
	m.cbMu.RLock()
	callbacks := slices.Clone(m.callbacks)
	m.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(c)
		}
	}
}
