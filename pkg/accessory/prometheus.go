package accessory

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus exposes every characteristic as a gauge labelled with the station id.
type Prometheus struct {
	gauges map[Characteristic]prometheus.Gauge
}

var gaugeOpts = map[Characteristic]prometheus.GaugeOpts{
	Temperature: {Name: "goaq_temperature_celsius", Help: "Compensated air temperature"},
	Humidity:    {Name: "goaq_humidity_percent", Help: "Compensated relative humidity"},
	CO2Detected: {Name: "goaq_co2_detected", Help: "1 when CO2 is above the detection threshold"},
	CO2Level:    {Name: "goaq_co2_ppm", Help: "CO2 concentration"},
	VOCDensity:  {Name: "goaq_voc_density_ugm3", Help: "Total VOC density"},
	PM25Density: {Name: "goaq_pm2_5_density_ugm3", Help: "PM2.5 density averaged over the last sampling cycle"},
	AirQuality:  {Name: "goaq_air_quality_level", Help: "Air quality level from 1 (excellent) to 5 (poor)"},
}

// NewPrometheus registers the gauges with reg. A nil reg uses the default registerer.
func NewPrometheus(reg prometheus.Registerer, station string) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	p := &Prometheus{gauges: make(map[Characteristic]prometheus.Gauge, len(gaugeOpts))}
	for c, opts := range gaugeOpts {
		opts.ConstLabels = prometheus.Labels{"station": station}
		p.gauges[c] = factory.NewGauge(opts)
	}
	return p
}

func (p *Prometheus) Notify(c Characteristic, value float64) {
	if g, ok := p.gauges[c]; ok {
		g.Set(value)
	}
}
