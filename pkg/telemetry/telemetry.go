// Package telemetry delivers reading points to time-series databases and message brokers.
package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"
)

// Channel names emitted by the station.
const (
	ChannelTemperature = "temperature"
	ChannelHumidity    = "humidity"
	ChannelVOC         = "voc"
	ChannelCO2         = "co2"
	ChannelParticulate = "particulate"
)

// Point is one logical channel's fields at one instant.
type Point struct {
	Channel string
	Fields  map[string]float64
	Tags    map[string]string
	Time    time.Time
}

// FieldNames returns the field names in sorted order.
func (p Point) FieldNames() []string {
	return slices.Sorted(maps.Keys(p.Fields))
}

type payload struct {
	Channel string             `json:"channel"`
	Fields  map[string]float64 `json:"fields"`
	Tags    map[string]string  `json:"tags,omitempty"`
	Time    time.Time          `json:"time"`
}

// Encode returns the JSON document published to message brokers.
func (p Point) Encode() ([]byte, error) {
	return json.Marshal(payload(p))
}

// Decode parses a document produced by Encode.
func Decode(data []byte) (Point, error) {
	var pl payload
	if err := json.Unmarshal(data, &pl); err != nil {
		return Point{}, err
	}
	return Point(pl), nil
}

// Sink receives telemetry points.
type Sink interface {
	Emit(p Point) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(p Point) error

func (f SinkFunc) Emit(p Point) error {
	return f(p)
}

// WriteError is a failed delivery of one point. The point is not retried.
type WriteError struct {
	Sink    string
	Channel string
	Err     error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s: write %s failed: %v", e.Sink, e.Channel, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Multi fans every point out to all sinks and joins their errors.
type Multi []Sink

func (m Multi) Emit(p Point) error {
	var errs []error
	for _, s := range m {
		if err := s.Emit(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every point.
var Discard Sink = SinkFunc(func(Point) error { return nil })
