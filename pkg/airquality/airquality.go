// Package airquality maps pollutant concentrations to a subjective 1..5 air quality level.
package airquality

// Level is a subjective air quality level, 1 (best) to 5 (worst).
type Level uint8

const (
	Excellent Level = iota + 1
	Good
	Fair
	Inferior
	Poor
)

func (l Level) String() string {
	switch l {
	case Excellent:
		return "excellent"
	case Good:
		return "good"
	case Fair:
		return "fair"
	case Inferior:
		return "inferior"
	case Poor:
		return "poor"
	default:
		return "unknown"
	}
}

// Limits are the per-pollutant thresholds for one level. A reading strictly above any of them
// qualifies for that level.
type Limits struct {
	CO2  uint16 `yaml:"co2"`   // ppm
	TVOC uint16 `yaml:"tvoc"`  // ppb
	PM25 uint16 `yaml:"pm2_5"` // µg/m³
}

// Thresholds holds limits for levels 2 through 5 and the CO2 detection threshold.
type Thresholds struct {
	Poor         Limits `yaml:"poor"`     // Level 5
	Inferior     Limits `yaml:"inferior"` // Level 4
	Fair         Limits `yaml:"fair"`     // Level 3
	Good         Limits `yaml:"good"`     // Level 2
	CO2Threshold uint16 `yaml:"co2_detected"`
}

// DefaultThresholds returns the factory table.
// The level 2 PM2.5 limit (250) is larger than the level 3 and 4 limits; it is kept as shipped.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Poor:         Limits{CO2: 1500, TVOC: 4000, PM25: 100},
		Inferior:     Limits{CO2: 1100, TVOC: 1000, PM25: 55},
		Fair:         Limits{CO2: 800, TVOC: 400, PM25: 35},
		Good:         Limits{CO2: 600, TVOC: 200, PM25: 250},
		CO2Threshold: 1000,
	}
}

func (l Limits) exceeded(co2, tvoc, pm25 uint16) bool {
	return co2 > l.CO2 || tvoc > l.TVOC || pm25 > l.PM25
}

// Classify returns the worst level whose limits any pollutant exceeds, checking level 5 first.
func (t Thresholds) Classify(co2, tvoc, pm25 uint16) Level {
	switch {
	case t.Poor.exceeded(co2, tvoc, pm25):
		return Poor
	case t.Inferior.exceeded(co2, tvoc, pm25):
		return Inferior
	case t.Fair.exceeded(co2, tvoc, pm25):
		return Fair
	case t.Good.exceeded(co2, tvoc, pm25):
		return Good
	default:
		return Excellent
	}
}

// CO2Detected reports whether the CO2 concentration is abnormal.
func (t Thresholds) CO2Detected(co2 uint16) bool {
	return uint32(co2) > uint32(t.CO2Threshold)
}

// Classify uses the default thresholds.
func Classify(co2, tvoc, pm25 uint16) Level {
	return DefaultThresholds().Classify(co2, tvoc, pm25)
}
