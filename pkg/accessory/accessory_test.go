package accessory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/itohio/goaq/pkg/airquality"
	"github.com/itohio/goaq/pkg/reading"
)

type recorder map[Characteristic]float64

func (r recorder) Notify(c Characteristic, value float64) {
	r[c] = value
}

func TestCharacteristic_String(t *testing.T) {
	assert.Equal(t, "temperature", Temperature.String())
	assert.Equal(t, "pm2_5_density", PM25Density.String())
	assert.Equal(t, "air_quality", AirQuality.String())
	assert.Equal(t, "unknown", Characteristic(42).String())
}

func TestPublish(t *testing.T) {
	tests := []struct {
		name     string
		r        reading.Composite
		detected float64
		level    float64
	}{
		{
			name:     "clean air",
			r:        reading.Composite{Temperature: 21.5, Humidity: 40, CO2: 450, TVOC: 100, PM2_5: 5},
			detected: 0,
			level:    float64(airquality.Excellent),
		},
		{
			name:     "slightly elevated",
			r:        reading.Composite{CO2: 650, TVOC: 100, PM2_5: 5},
			detected: 0,
			level:    float64(airquality.Good),
		},
		{
			name:     "stuffy room",
			r:        reading.Composite{Temperature: 24, Humidity: 55, CO2: 1200, TVOC: 300, PM2_5: 20},
			detected: 1,
			level:    float64(airquality.Inferior),
		},
		{
			name:     "detection is strict",
			r:        reading.Composite{CO2: 1000},
			detected: 0,
			level:    float64(airquality.Fair),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := recorder{}
			Publish(rec, tt.r, airquality.DefaultThresholds())

			assert.Len(t, rec, len(Characteristics))
			assert.InDelta(t, float64(tt.r.Temperature), rec[Temperature], 1e-6)
			assert.InDelta(t, float64(tt.r.Humidity), rec[Humidity], 1e-6)
			assert.Equal(t, tt.detected, rec[CO2Detected])
			assert.Equal(t, float64(tt.r.CO2), rec[CO2Level])
			assert.InDelta(t, float64(tt.r.TVOC)*4.5, rec[VOCDensity], 1e-3)
			assert.Equal(t, float64(tt.r.PM2_5), rec[PM25Density])
			assert.Equal(t, tt.level, rec[AirQuality])
		})
	}
}

func TestMulti(t *testing.T) {
	a, b := recorder{}, recorder{}
	Multi{a, Discard, b}.Notify(CO2Level, 800)
	assert.Equal(t, 800.0, a[CO2Level])
	assert.Equal(t, 800.0, b[CO2Level])
}
