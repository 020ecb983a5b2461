package sensor

import (
	"errors"
	"fmt"
)

var (
	// ErrNoData is returned when a sensor has nothing new since the last read.
	ErrNoData = errors.New("no new data")
	// ErrChecksum is returned when a frame or word fails its checksum.
	ErrChecksum = errors.New("checksum mismatch")
	// ErrCalibration is wrapped by errors reading or writing calibration state.
	ErrCalibration = errors.New("calibration failure")
	// ErrNotPresent is returned by an Array channel whose sensor was never initialized.
	ErrNotPresent = errors.New("sensor not present")
)

// ReadError is a transient failure reading one sensor channel.
type ReadError struct {
	Sensor string
	Err    error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("%s: read failed: %v", e.Sensor, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// InitError is a failure bringing up a sensor. It is reported at startup and the
// station continues without that sensor.
type InitError struct {
	Sensor string
	Err    error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("%s: init failed: %v", e.Sensor, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

func readErr(sensor string, err error) error {
	if err == nil {
		return nil
	}
	var re *ReadError
	if errors.As(err, &re) {
		return err
	}
	return &ReadError{Sensor: sensor, Err: err}
}
