package telemetry

import (
	"context"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/itohio/goaq/pkg/config"
)

// Influx writes points to an InfluxDB v2 bucket. The measurement is the channel name and
// every field of the point becomes a field of the record.
// Writes block; wrap the sink in Async when called from the sampling loop.
type Influx struct {
	client  influxdb2.Client
	write   api.WriteAPIBlocking
	timeout time.Duration
}

// NewInflux creates a sink for the configured server.
func NewInflux(cfg config.InfluxConfig) *Influx {
	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPRequestTimeout(10))
	return &Influx{
		client:  client,
		write:   client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		timeout: 10 * time.Second,
	}
}

func (i *Influx) Emit(p Point) error {
	fields := make(map[string]interface{}, len(p.Fields))
	for k, v := range p.Fields {
		fields[k] = v
	}
	ts := p.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), i.timeout)
	defer cancel()

	if err := i.write.WritePoint(ctx, influxdb2.NewPoint(p.Channel, p.Tags, fields, ts)); err != nil {
		return &WriteError{Sink: "influx", Channel: p.Channel, Err: err}
	}
	return nil
}

// Close releases the HTTP client.
func (i *Influx) Close() {
	i.client.Close()
}
