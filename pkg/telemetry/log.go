package telemetry

import (
	"context"
	"log/slog"
)

// Log writes every point to a structured logger. It stands in for a database on the bench.
type Log struct {
	log   *slog.Logger
	level slog.Level
}

// NewLog creates a sink logging at level.
func NewLog(log *slog.Logger, level slog.Level) *Log {
	return &Log{log: log, level: level}
}

func (l *Log) Emit(p Point) error {
	attrs := make([]slog.Attr, 0, len(p.Fields)+1)
	attrs = append(attrs, slog.String("channel", p.Channel))
	for _, name := range p.FieldNames() {
		attrs = append(attrs, slog.Float64(name, p.Fields[name]))
	}
	l.log.LogAttrs(context.Background(), l.level, "telemetry", attrs...)
	return nil
}
