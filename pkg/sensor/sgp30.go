package sensor

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
)

// SGP30Address is the fixed I2C address of the SGP30.
const SGP30Address = 0x58

// VOC is one indoor air quality measurement.
type VOC struct {
	TVOC uint16 // ppb
	ECO2 uint16 // ppm
}

// Baseline is the pair of calibration words the VOC sensor learns over time.
type Baseline struct {
	ECO2 uint16
	TVOC uint16
}

func (b Baseline) String() string {
	return fmt.Sprintf("eco2=%04x tvoc=%04x", b.ECO2, b.TVOC)
}

// SGP30 is a Sensirion SGP30 VOC and eCO2 sensor.
type SGP30 struct {
	dev    *i2c.Dev
	serial [3]uint16
	sleep  func(time.Duration)
}

// NewSGP30 reads the serial number and starts the IAQ algorithm.
func NewSGP30(bus i2c.Bus, addr uint16) (*SGP30, error) {
	if addr == 0 {
		addr = SGP30Address
	}
	s := &SGP30{dev: &i2c.Dev{Bus: bus, Addr: addr}, sleep: time.Sleep}

	ws, err := s.command([]byte{0x36, 0x82}, time.Millisecond, 3)
	if err != nil {
		return nil, &InitError{Sensor: "sgp30", Err: fmt.Errorf("serial number: %w", err)}
	}
	copy(s.serial[:], ws)

	if _, err := s.command([]byte{0x20, 0x03}, 10*time.Millisecond, 0); err != nil {
		return nil, &InitError{Sensor: "sgp30", Err: fmt.Errorf("iaq init: %w", err)}
	}
	return s, nil
}

func (s *SGP30) String() string {
	return "sgp30"
}

// Serial returns the sensor serial number.
func (s *SGP30) Serial() string {
	return fmt.Sprintf("%04x%04x%04x", s.serial[0], s.serial[1], s.serial[2])
}

// command writes cmd, waits for the conversion and reads n checked words back.
func (s *SGP30) command(cmd []byte, wait time.Duration, n int) ([]uint16, error) {
	if err := s.dev.Tx(cmd, nil); err != nil {
		return nil, err
	}
	s.sleep(wait)
	if n == 0 {
		return nil, nil
	}
	r := make([]byte, 3*n)
	if err := s.dev.Tx(nil, r); err != nil {
		return nil, err
	}
	return words(r)
}

// Measure sets humidity compensation from absHumidity (g/m³, zero disables it) and reads
// TVOC and eCO2. It must be called once per second to keep the on-chip algorithm in step.
func (s *SGP30) Measure(absHumidity float32) (VOC, error) {
	if err := s.setHumidity(absHumidity); err != nil {
		return VOC{}, readErr("sgp30", fmt.Errorf("humidity compensation: %w", err))
	}
	ws, err := s.command([]byte{0x20, 0x08}, 12*time.Millisecond, 2)
	if err != nil {
		return VOC{}, readErr("sgp30", err)
	}
	return VOC{ECO2: ws[0], TVOC: ws[1]}, nil
}

// setHumidity writes the absolute humidity as 8.8 fixed point g/m³.
func (s *SGP30) setHumidity(ah float32) error {
	var fixed uint16
	switch {
	case ah <= 0:
	case ah >= 255:
		fixed = 0xffff
	default:
		fixed = uint16(ah * 256)
	}
	_, err := s.command(appendWord([]byte{0x20, 0x61}, fixed), 10*time.Millisecond, 0)
	return err
}

// Baseline reads the current calibration baseline.
func (s *SGP30) Baseline() (Baseline, error) {
	ws, err := s.command([]byte{0x20, 0x15}, 10*time.Millisecond, 2)
	if err != nil {
		return Baseline{}, readErr("sgp30", fmt.Errorf("%w: %w", ErrCalibration, err))
	}
	return Baseline{ECO2: ws[0], TVOC: ws[1]}, nil
}

// SetBaseline restores a previously read calibration baseline.
func (s *SGP30) SetBaseline(b Baseline) error {
	cmd := appendWord([]byte{0x20, 0x1e}, b.TVOC)
	cmd = appendWord(cmd, b.ECO2)
	if _, err := s.command(cmd, 10*time.Millisecond, 0); err != nil {
		return readErr("sgp30", fmt.Errorf("%w: %w", ErrCalibration, err))
	}
	return nil
}
