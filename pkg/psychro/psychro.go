// Package psychro converts raw temperature and relative humidity into derived quantities.
//
// Magnus coefficients b=17.62 and c=243.12 °C are used throughout. All math is float32.
package psychro

import (
	"errors"

	"github.com/chewxy/math32"
)

const (
	magnusB = 17.62
	magnusC = 243.12

	// VOCDensityFactor converts a TVOC reading in ppb to µg/m³.
	VOCDensityFactor = 4.5

	// DefaultTemperatureOffset compensates for the hygrometer heating up inside the enclosure (°C).
	DefaultTemperatureOffset = -13.5
)

// ErrHumidityOutOfRange is returned when relative humidity is not in (0, 100].
var ErrHumidityOutOfRange = errors.New("relative humidity out of range")

// Derived holds the quantities computed from one raw temperature/humidity pair.
type Derived struct {
	Temperature      float32 // Compensated temperature (°C)
	Humidity         float32 // Relative humidity recomputed at the compensated temperature (%RH)
	AbsoluteHumidity float32 // g/m³, from raw values
	DewPoint         float32 // °C, from raw values
}

func gamma(t float32) float32 {
	return magnusB * t / (magnusC + t)
}

// AbsoluteHumidity returns water vapour density in g/m³ for temperature t (°C) and relative humidity h (%).
func AbsoluteHumidity(t, h float32) float32 {
	return 216.7 * ((h / 100) * 6.112 * math32.Exp(gamma(t)) / (273.15 + t))
}

// DewPoint returns the dew point in °C. h must be greater than zero.
func DewPoint(t, h float32) float32 {
	g := math32.Log(h/100) + gamma(t)
	return magnusC * g / (magnusB - g)
}

// RelativeHumidityFromDewPoint returns the relative humidity (%) of air at temperature t with dew point td.
func RelativeHumidityFromDewPoint(t, td float32) float32 {
	return 100 * math32.Exp(magnusC*magnusB*(td-t)/((magnusC+t)*(magnusC+td)))
}

// Compensate applies the self-heating offset to a raw reading.
// Dew point and absolute humidity stay computed from the raw values, and the relative humidity
// is recomputed for the compensated temperature from that dew point, clamped to 100%.
func Compensate(tRaw, hRaw, offset float32) (Derived, error) {
	if !(hRaw > 0 && hRaw <= 100) {
		return Derived{}, ErrHumidityOutOfRange
	}

	t := tRaw + offset
	dp := DewPoint(tRaw, hRaw)
	return Derived{
		Temperature:      t,
		Humidity:         min(RelativeHumidityFromDewPoint(t, dp), 100),
		AbsoluteHumidity: AbsoluteHumidity(tRaw, hRaw),
		DewPoint:         dp,
	}, nil
}

// CToF converts Celsius to Fahrenheit.
func CToF(t float32) float32 {
	return t*1.8 + 32
}

// VOCDensity converts a TVOC reading in ppb to µg/m³.
func VOCDensity(ppb uint16) float32 {
	return float32(ppb) * VOCDensityFactor
}
