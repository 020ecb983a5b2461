package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// publisher is the part of *nats.Conn the sink uses.
type publisher interface {
	Publish(subject string, data []byte) error
}

// NATS publishes each point as JSON to <subject>.<channel>.
// The NATS client buffers outgoing messages, so Emit does not wait for the server.
type NATS struct {
	conn    publisher
	subject string
}

// DialNATS connects to url and returns a sink publishing under subject.
func DialNATS(url, subject, name string, log *slog.Logger) (*NATS, *nats.Conn, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to nats %s: %w", url, err)
	}
	return NewNATS(nc, subject), nc, nil
}

// NewNATS creates a sink publishing through conn.
func NewNATS(conn publisher, subject string) *NATS {
	return &NATS{conn: conn, subject: subject}
}

// Subject returns the subject for channel.
func (n *NATS) Subject(channel string) string {
	return n.subject + "." + channel
}

func (n *NATS) Emit(p Point) error {
	payload, err := p.Encode()
	if err != nil {
		return &WriteError{Sink: "nats", Channel: p.Channel, Err: err}
	}
	if err := n.conn.Publish(n.Subject(p.Channel), payload); err != nil {
		return &WriteError{Sink: "nats", Channel: p.Channel, Err: err}
	}
	return nil
}
