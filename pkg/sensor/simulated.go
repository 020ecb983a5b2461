package sensor

import (
	"math/rand/v2"
	"sync"

	"github.com/chewxy/math32"

	"github.com/itohio/goaq/pkg/config"
	"github.com/itohio/goaq/pkg/gate"
	"github.com/itohio/goaq/pkg/reading"
)

const (
	simCO2Period   = 5000 // ms between new CO2 readings
	simPMPeriod    = 1000 // ms between particulate frames
	simPMSpinUp    = 3000 // ms after power-on before frames appear
	simDayPeriodMs = 24 * 60 * 60 * 1000
)

// Simulated generates plausible readings for every channel.
// Temperature and humidity revert to their configured means with a slow daily swing,
// CO2 and VOC drift, and the particulate sensor only streams while powered.
// It is deterministic for a given seed and clock.
type Simulated struct {
	cfg   config.SimulationConfig
	clock gate.Clock

	mu   sync.Mutex
	rng  *rand.Rand
	temp float32
	hum  float32
	co2  float32
	tvoc float32
	pm25 float32

	baseline  Baseline
	autoCalib bool
	powered   bool
	poweredAt uint32
	lastPM    uint32
	lastCO2   uint32
	hasCO2    bool
}

// NewSimulated creates a simulated sensor array driven by clock.
func NewSimulated(cfg config.SimulationConfig, clock gate.Clock) *Simulated {
	seed := uint64(cfg.Seed)
	return &Simulated{
		cfg:      cfg,
		clock:    clock,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		temp:     cfg.Temperature,
		hum:      cfg.Humidity,
		co2:      cfg.CO2,
		tvoc:     cfg.TVOC,
		pm25:     cfg.PM25,
		baseline: Baseline{ECO2: 0x8000, TVOC: 0x8000},
	}
}

// noise returns a symmetric random value scaled by the configured relative noise.
func (s *Simulated) noise(scale float32) float32 {
	return (s.rng.Float32()*2 - 1) * s.cfg.Noise * scale
}

// revert moves v toward mean by rate, plus noise.
func (s *Simulated) revert(v, mean, rate float32) float32 {
	return v + rate*(mean-v) + s.noise(mean)
}

// ReadTemperatureHumidity returns raw temperature and humidity.
func (s *Simulated) ReadTemperatureHumidity() (float32, float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	phase := 2 * math32.Pi * float32(s.clock.Millis()%simDayPeriodMs) / simDayPeriodMs
	s.temp = s.revert(s.temp, s.cfg.Temperature+2*math32.Sin(phase), 0.05)
	s.hum = s.revert(s.hum, s.cfg.Humidity-5*math32.Sin(phase), 0.05)
	s.hum = min(max(s.hum, 1), 100)

	return s.temp, s.hum, nil
}

// ReadVOC returns drifting TVOC and eCO2 values. The humidity hint is ignored.
func (s *Simulated) ReadVOC(float32) (VOC, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tvoc = max(s.revert(s.tvoc, s.cfg.TVOC, 0.02), 0)
	eco2 := 400 + s.tvoc*2
	return VOC{TVOC: uint16(s.tvoc), ECO2: uint16(eco2)}, nil
}

// ReadCO2 produces a new value every few seconds and ErrNoData in between.
func (s *Simulated) ReadCO2() (uint16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Millis()
	if s.hasCO2 && !gate.Elapsed(now, s.lastCO2, simCO2Period) {
		return 0, ErrNoData
	}
	s.lastCO2 = now
	s.hasCO2 = true
	s.co2 = max(s.revert(s.co2, s.cfg.CO2, 0.1), 400)
	return uint16(s.co2), nil
}

// ReadParticulate returns a frame once per second while the sensor is powered and spun up.
func (s *Simulated) ReadParticulate() (reading.Particulate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Millis()
	if !s.powered || !gate.Elapsed(now, s.poweredAt, simPMSpinUp) || !gate.Elapsed(now, s.lastPM, simPMPeriod) {
		return reading.Particulate{}, ErrNoData
	}
	s.lastPM = now

	s.pm25 = max(s.revert(s.pm25, s.cfg.PM25, 0.2), 0)
	pm1 := s.pm25 * 0.7
	pm10 := s.pm25 * 1.3
	return reading.Particulate{
		PM1_0: uint16(pm1),
		PM2_5: uint16(s.pm25),
		PM10:  uint16(pm10),
		Counts: reading.Counts{
			Over0_3: uint16(pm1 * 150),
			Over0_5: uint16(pm1 * 45),
			Over1_0: uint16(s.pm25 * 8),
			Over2_5: uint16(s.pm25 * 1.5),
			Over5_0: uint16(pm10 * 0.3),
			Over10:  uint16(pm10 * 0.1),
		},
	}, nil
}

// SetParticulatePower switches the simulated particulate sensor.
func (s *Simulated) SetParticulatePower(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if on && !s.powered {
		s.poweredAt = s.clock.Millis()
		s.lastPM = s.poweredAt
	}
	s.powered = on
	return nil
}

// Powered reports whether the particulate sensor is switched on.
func (s *Simulated) Powered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.powered
}

// VOCBaseline returns the simulated calibration baseline.
func (s *Simulated) VOCBaseline() (Baseline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseline, nil
}

// SetVOCBaseline stores the calibration baseline.
func (s *Simulated) SetVOCBaseline(b Baseline) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseline = b
	return nil
}

// SetCO2AutoCalibration records the automatic calibration setting.
func (s *Simulated) SetCO2AutoCalibration(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoCalib = on
	return nil
}

// AutoCalibration reports the last automatic calibration setting.
func (s *Simulated) AutoCalibration() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoCalib
}

// Close is a no-op.
func (s *Simulated) Close() error {
	return nil
}
