package reading

import "fmt"

// Composite is one snapshot of all sensor channels.
// AbsoluteHumidity and DewPoint are always derived from the raw temperature and humidity,
// so they do not depend on the self-heating offset.
type Composite struct {
	Temperature    float32 // Compensated temperature (°C)
	TemperatureRaw float32 // Sensor-native temperature (°C)
	Humidity       float32 // Compensated relative humidity (%RH)
	HumidityRaw    float32 // Sensor-native relative humidity (%RH)

	AbsoluteHumidity float32 // g/m³
	DewPoint         float32 // °C

	TVOC uint16 // ppb
	ECO2 uint16 // ppm
	CO2  uint16 // ppm

	PM1_0 uint16 // µg/m³, averaged over the last completed duty cycle
	PM2_5 uint16 // µg/m³
	PM10  uint16 // µg/m³

	Counts Counts // Taken from the last in-window sample of the completed duty cycle
}

// Counts holds particle counts per 0.1 L of air, by minimum diameter.
type Counts struct {
	Over0_3 uint16
	Over0_5 uint16
	Over1_0 uint16
	Over2_5 uint16
	Over5_0 uint16
	Over10  uint16
}

// Particulate is one raw frame from the particulate sensor.
type Particulate struct {
	PM1_0  uint16 // Standard particle (CF=1) concentration (µg/m³)
	PM2_5  uint16
	PM10   uint16
	Counts Counts
}

func (p Particulate) String() string {
	return fmt.Sprintf("pm1.0=%d pm2.5=%d pm10=%d", p.PM1_0, p.PM2_5, p.PM10)
}

func (c Composite) String() string {
	return fmt.Sprintf("t=%.1f°C (raw %.1f) rh=%.1f%% (raw %.1f) ah=%.2fg/m³ dp=%.1f°C tvoc=%d eco2=%d co2=%d pm1.0=%d pm2.5=%d pm10=%d",
		c.Temperature, c.TemperatureRaw, c.Humidity, c.HumidityRaw, c.AbsoluteHumidity, c.DewPoint,
		c.TVOC, c.ECO2, c.CO2, c.PM1_0, c.PM2_5, c.PM10)
}
