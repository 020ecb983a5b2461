package sensor

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Hygrometer measures temperature and relative humidity.
type Hygrometer interface {
	Sense(env *physic.Env) error
	String() string
}

// Default I2C addresses.
const (
	SHT31Address = 0x44
	AHT20Address = 0x38
)

// NewHygrometer creates the hygrometer named by model ("sht31" or "aht20").
// A zero address selects the model default.
func NewHygrometer(bus i2c.Bus, model string, addr uint16) (Hygrometer, error) {
	switch model {
	case "sht31":
		return NewSHT31(bus, addr)
	case "aht20":
		return NewAHT20(bus, addr)
	default:
		return nil, &InitError{Sensor: model, Err: fmt.Errorf("unknown hygrometer model")}
	}
}

// SHT31 is a Sensirion SHT3x temperature and humidity sensor.
type SHT31 struct {
	dev *i2c.Dev
}

// NewSHT31 soft-resets the sensor and returns a driver for it.
func NewSHT31(bus i2c.Bus, addr uint16) (*SHT31, error) {
	if addr == 0 {
		addr = SHT31Address
	}
	s := &SHT31{dev: &i2c.Dev{Bus: bus, Addr: addr}}
	if err := s.dev.Tx([]byte{0x30, 0xa2}, nil); err != nil {
		return nil, &InitError{Sensor: "sht31", Err: err}
	}
	return s, nil
}

func (s *SHT31) String() string {
	return "sht31"
}

// Sense runs a single-shot high-repeatability measurement with clock stretching.
func (s *SHT31) Sense(env *physic.Env) error {
	var r [6]byte
	if err := s.dev.Tx([]byte{0x2c, 0x06}, r[:]); err != nil {
		return readErr("sht31", err)
	}
	ws, err := words(r[:])
	if err != nil {
		return readErr("sht31", err)
	}

	mc := -45000 + 175000*int64(ws[0])/65535
	env.Temperature = physic.ZeroCelsius + physic.Temperature(mc)*physic.MilliCelsius
	env.Humidity = physic.RelativeHumidity(int64(ws[1]) * 100 * int64(physic.PercentRH) / 65535)
	return nil
}

// AHT20 is an Aosong AHT20/AHT21 temperature and humidity sensor.
type AHT20 struct {
	dev   *i2c.Dev
	sleep func(time.Duration)
}

// NewAHT20 calibrates the sensor if needed and returns a driver for it.
func NewAHT20(bus i2c.Bus, addr uint16) (*AHT20, error) {
	if addr == 0 {
		addr = AHT20Address
	}
	a := &AHT20{dev: &i2c.Dev{Bus: bus, Addr: addr}, sleep: time.Sleep}
	if err := a.init(); err != nil {
		return nil, &InitError{Sensor: "aht20", Err: err}
	}
	return a, nil
}

func (a *AHT20) init() error {
	var status [1]byte
	if err := a.dev.Tx(nil, status[:]); err != nil {
		return err
	}
	if status[0]&0x08 != 0 {
		return nil
	}
	if err := a.dev.Tx([]byte{0xbe, 0x08, 0x00}, nil); err != nil {
		return err
	}
	a.sleep(10 * time.Millisecond)
	return nil
}

func (a *AHT20) String() string {
	return "aht20"
}

// Sense triggers a measurement and reads it back after the conversion time.
func (a *AHT20) Sense(env *physic.Env) error {
	if err := a.dev.Tx([]byte{0xac, 0x33, 0x00}, nil); err != nil {
		return readErr("aht20", err)
	}
	a.sleep(80 * time.Millisecond)

	var r [7]byte
	if err := a.dev.Tx(nil, r[:]); err != nil {
		return readErr("aht20", err)
	}
	if r[0]&0x80 != 0 {
		return readErr("aht20", ErrNoData)
	}
	if crc8(r[:6]) != r[6] {
		return readErr("aht20", ErrChecksum)
	}

	rawH := int64(r[1])<<12 | int64(r[2])<<4 | int64(r[3])>>4
	rawT := int64(r[3]&0x0f)<<16 | int64(r[4])<<8 | int64(r[5])

	env.Humidity = physic.RelativeHumidity(rawH * 100 * int64(physic.PercentRH) >> 20)
	env.Temperature = physic.ZeroCelsius + physic.Temperature((rawT*200000>>20)-50000)*physic.MilliCelsius
	return nil
}

// Celsius returns the temperature of env in °C.
func Celsius(env physic.Env) float32 {
	return float32(env.Temperature.Celsius())
}

// Percent returns the relative humidity of env in %.
func Percent(env physic.Env) float32 {
	return float32(env.Humidity) / float32(physic.PercentRH)
}
