package sensor

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"

	"github.com/itohio/goaq/pkg/config"
	"github.com/itohio/goaq/pkg/reading"
)

// VOCSensor measures volatile organic compounds.
type VOCSensor interface {
	Measure(absHumidity float32) (VOC, error)
	Baseline() (Baseline, error)
	SetBaseline(b Baseline) error
}

// CO2Sensor measures carbon dioxide.
type CO2Sensor interface {
	Read() (uint16, error)
	SetAutoCalibration(on bool) error
}

// ParticulateSensor measures particulate matter.
type ParticulateSensor interface {
	Read() (reading.Particulate, error)
}

// Array combines the station's sensors into one source. Any member may be nil, in which case
// its channel reports ErrNotPresent.
type Array struct {
	Hygrometer  Hygrometer
	VOC         VOCSensor
	CO2         CO2Sensor
	Particulate ParticulateSensor
	Power       Switch  // Particulate sensor enable line
	Bus         i2c.Bus // Shared with the display, nil when the bus failed to open

	closers []io.Closer
}

// OpenArray brings up every sensor described by cfg on real hardware.
// Sensors that fail to initialize are left out and reported as InitErrors joined into the
// returned error; the array is usable in either case.
func OpenArray(cfg config.SensorsConfig, log *slog.Logger) (*Array, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	a := &Array{}
	var errs []error

	bus, err := OpenBus(cfg.I2CBus)
	if err != nil {
		errs = append(errs, &InitError{Sensor: "i2c", Err: err})
	} else {
		a.Bus = bus
		a.closers = append(a.closers, bus)
		a.attachI2C(bus, cfg, &errs)
	}

	if co2, err := OpenMHZ19(cfg.CO2.Port, cfg.CO2.Baud, log); err != nil {
		errs = append(errs, err)
	} else {
		a.CO2 = co2
		a.closers = append(a.closers, co2)
	}

	if pm, err := OpenPMS5003(cfg.Particulate.Port, cfg.Particulate.Baud, log); err != nil {
		errs = append(errs, err)
	} else {
		a.Particulate = pm
		a.closers = append(a.closers, pm)
	}

	if cfg.ParticulateEnable != "" {
		if pin, err := OpenPin(cfg.ParticulateEnable); err != nil {
			errs = append(errs, &InitError{Sensor: "pms5003 enable", Err: err})
		} else {
			a.Power = pin
		}
	}

	return a, errors.Join(errs...)
}

func (a *Array) attachI2C(bus i2c.Bus, cfg config.SensorsConfig, errs *[]error) {
	if h, err := NewHygrometer(bus, cfg.Hygrometer, cfg.HygrometerAddress); err != nil {
		*errs = append(*errs, err)
	} else {
		a.Hygrometer = h
	}

	if voc, err := NewSGP30(bus, cfg.SGP30Address); err != nil {
		*errs = append(*errs, err)
	} else {
		a.VOC = voc
	}
}

// ReadTemperatureHumidity returns raw temperature (°C) and relative humidity (%).
func (a *Array) ReadTemperatureHumidity() (float32, float32, error) {
	if a.Hygrometer == nil {
		return 0, 0, &ReadError{Sensor: "hygrometer", Err: ErrNotPresent}
	}
	var env physic.Env
	if err := a.Hygrometer.Sense(&env); err != nil {
		return 0, 0, readErr(a.Hygrometer.String(), err)
	}
	return Celsius(env), Percent(env), nil
}

// ReadVOC measures TVOC and eCO2 with humidity compensation.
func (a *Array) ReadVOC(absHumidity float32) (VOC, error) {
	if a.VOC == nil {
		return VOC{}, &ReadError{Sensor: "voc", Err: ErrNotPresent}
	}
	v, err := a.VOC.Measure(absHumidity)
	return v, readErr("voc", err)
}

// ReadCO2 returns a new CO2 concentration or ErrNoData.
func (a *Array) ReadCO2() (uint16, error) {
	if a.CO2 == nil {
		return 0, &ReadError{Sensor: "co2", Err: ErrNotPresent}
	}
	return a.CO2.Read()
}

// ReadParticulate returns a new particulate frame or ErrNoData.
func (a *Array) ReadParticulate() (reading.Particulate, error) {
	if a.Particulate == nil {
		return reading.Particulate{}, &ReadError{Sensor: "particulate", Err: ErrNotPresent}
	}
	return a.Particulate.Read()
}

// SetParticulatePower switches the particulate sensor on or off.
func (a *Array) SetParticulatePower(on bool) error {
	if a.Power == nil {
		return nil
	}
	if err := a.Power.Set(on); err != nil {
		return fmt.Errorf("particulate power: %w", err)
	}
	return nil
}

// VOCBaseline reads the VOC sensor calibration baseline.
func (a *Array) VOCBaseline() (Baseline, error) {
	if a.VOC == nil {
		return Baseline{}, &ReadError{Sensor: "voc", Err: ErrNotPresent}
	}
	return a.VOC.Baseline()
}

// SetVOCBaseline restores the VOC sensor calibration baseline.
func (a *Array) SetVOCBaseline(b Baseline) error {
	if a.VOC == nil {
		return &ReadError{Sensor: "voc", Err: ErrNotPresent}
	}
	return a.VOC.SetBaseline(b)
}

// SetCO2AutoCalibration enables or disables the CO2 sensor's automatic baseline correction.
func (a *Array) SetCO2AutoCalibration(on bool) error {
	if a.CO2 == nil {
		return &ReadError{Sensor: "co2", Err: ErrNotPresent}
	}
	return a.CO2.SetAutoCalibration(on)
}

// Close releases serial ports and the bus.
func (a *Array) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
