package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/itohio/goaq/pkg/accessory"
	"github.com/itohio/goaq/pkg/config"
	"github.com/itohio/goaq/pkg/telemetry"
)

// outputs holds the telemetry sinks and accessory notifiers.
type outputs struct {
	sink     telemetry.Sink
	notifier accessory.Notifier
	closers  []func()
}

// Close flushes queued telemetry and disconnects in reverse order of opening.
func (o *outputs) Close() {
	for i := len(o.closers) - 1; i >= 0; i-- {
		o.closers[i]()
	}
}

func openOutputs(ctx context.Context, cfg *config.Config, log *slog.Logger) *outputs {
	o := &outputs{}
	var (
		sinks     telemetry.Multi
		notifiers accessory.Multi
	)

	// Queued sinks are drained for up to five seconds on shutdown.
	async := func(name string, s telemetry.Sink) telemetry.Sink {
		a := telemetry.NewAsync(name, s, cfg.Telemetry.QueueSize, log)
		o.closers = append(o.closers, func() {
			flush, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := a.Close(flush); err != nil {
				log.Warn("telemetry queue not drained", "sink", name, "error", err)
			}
		})
		return a
	}

	sinks = append(sinks, telemetry.NewLog(log.With("component", "telemetry"), slog.LevelDebug))

	if c := cfg.Telemetry.Influx; c.URL != "" {
		influx := telemetry.NewInflux(c)
		o.closers = append(o.closers, influx.Close)
		sinks = append(sinks, async("influx", influx))
		log.Info("influx telemetry enabled", "url", c.URL, "bucket", c.Bucket)
	}

	if c := cfg.Telemetry.MQTT; c.Broker != "" {
		client, err := telemetry.DialMQTT(ctx, c.Broker, "goaq-"+cfg.Station.ID, log)
		if err != nil {
			log.Warn("mqtt telemetry disabled", "error", err)
		} else {
			mqtt := telemetry.NewMQTT(client, c.TopicPrefix, c.QoS)
			o.closers = append(o.closers, func() { _ = mqtt.Close() })
			sinks = append(sinks, async("mqtt", mqtt))
			log.Info("mqtt telemetry enabled", "broker", c.Broker, "prefix", c.TopicPrefix)
		}
	}

	if c := cfg.Telemetry.NATS; c.URL != "" {
		nats, conn, err := telemetry.DialNATS(c.URL, c.Subject, "goaq-"+cfg.Station.ID, log)
		if err != nil {
			log.Warn("nats telemetry disabled", "error", err)
		} else {
			o.closers = append(o.closers, func() {
				if err := conn.Drain(); err != nil {
					conn.Close()
				}
			})
			sinks = append(sinks, nats)
			log.Info("nats telemetry enabled", "url", c.URL, "subject", c.Subject)
		}
	}

	if addr := cfg.Accessory.Listen; addr != "" {
		notifiers = append(notifiers, accessory.NewPrometheus(prometheus.DefaultRegisterer, cfg.Station.ID))
		o.closers = append(o.closers, serveMetrics(addr, log))
	}

	if c := cfg.Accessory.MQTT; c.Broker != "" {
		client, err := telemetry.DialMQTT(ctx, c.Broker, "goaq-accessory-"+cfg.Station.ID, log)
		if err != nil {
			log.Warn("mqtt accessory disabled", "error", err)
		} else {
			n := accessory.NewMQTT(client, c.TopicPrefix, c.QoS, log)
			o.closers = append(o.closers, func() { _ = n.Close() })
			notifiers = append(notifiers, n)
			log.Info("mqtt accessory enabled", "broker", c.Broker, "prefix", c.TopicPrefix)
		}
	}

	o.sink = sinks
	o.notifier = notifiers
	return o
}

// serveMetrics exposes the Prometheus registry and returns a function stopping the server.
func serveMetrics(addr string, log *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
