// Package accessory exposes the current reading as smart-home characteristics.
package accessory

import (
	"github.com/itohio/goaq/pkg/airquality"
	"github.com/itohio/goaq/pkg/psychro"
	"github.com/itohio/goaq/pkg/reading"
)

// Characteristic is one value exposed to the smart-home surface.
type Characteristic uint8

const (
	Temperature Characteristic = iota
	Humidity
	CO2Detected
	CO2Level
	VOCDensity
	PM25Density
	AirQuality
)

// Characteristics lists every characteristic in notification order.
var Characteristics = []Characteristic{
	Temperature, Humidity, CO2Detected, CO2Level, VOCDensity, PM25Density, AirQuality,
}

var names = [...]string{
	Temperature: "temperature",
	Humidity:    "humidity",
	CO2Detected: "co2_detected",
	CO2Level:    "co2_level",
	VOCDensity:  "voc_density",
	PM25Density: "pm2_5_density",
	AirQuality:  "air_quality",
}

func (c Characteristic) String() string {
	if int(c) < len(names) {
		return names[c]
	}
	return "unknown"
}

// Notifier receives characteristic updates. Implementations must not block.
type Notifier interface {
	Notify(c Characteristic, value float64)
}

// NotifierFunc adapts a function to a Notifier.
type NotifierFunc func(c Characteristic, value float64)

func (f NotifierFunc) Notify(c Characteristic, value float64) {
	f(c, value)
}

// Multi forwards every update to all notifiers.
type Multi []Notifier

func (m Multi) Notify(c Characteristic, value float64) {
	for _, n := range m {
		n.Notify(c, value)
	}
}

// Discard ignores every update.
var Discard Notifier = NotifierFunc(func(Characteristic, float64) {})

// Publish notifies every characteristic derived from r.
// CO2 detection is reported as 0 or 1 and air quality as the level number (1..5).
func Publish(n Notifier, r reading.Composite, th airquality.Thresholds) {
	detected := 0.0
	if th.CO2Detected(r.CO2) {
		detected = 1
	}

	n.Notify(Temperature, float64(r.Temperature))
	n.Notify(Humidity, float64(r.Humidity))
	n.Notify(CO2Detected, detected)
	n.Notify(CO2Level, float64(r.CO2))
	n.Notify(VOCDensity, float64(psychro.VOCDensity(r.TVOC)))
	n.Notify(PM25Density, float64(r.PM2_5))
	n.Notify(AirQuality, float64(th.Classify(r.CO2, r.TVOC, r.PM2_5)))
}
