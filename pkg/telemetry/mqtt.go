package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/eclipse/paho.golang/paho"
)

// DialMQTT connects a paho client to broker (host:port).
func DialMQTT(ctx context.Context, broker, clientID string, log *slog.Logger) (*paho.Client, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", broker)
	if err != nil {
		return nil, fmt.Errorf("failed to dial mqtt broker %s: %w", broker, err)
	}

	client := paho.NewClient(paho.ClientConfig{
		ClientID: clientID,
		Conn:     conn,
		OnClientError: func(err error) {
			log.Error("mqtt client error", "broker", broker, "error", err)
		},
		OnServerDisconnect: func(d *paho.Disconnect) {
			log.Warn("mqtt server disconnect", "broker", broker, "reason", d.ReasonCode)
		},
	})

	ack, err := client.Connect(ctx, &paho.Connect{
		ClientID:   clientID,
		KeepAlive:  30,
		CleanStart: true,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to mqtt broker %s: %w", broker, err)
	}
	if ack.ReasonCode != 0 {
		conn.Close()
		return nil, fmt.Errorf("mqtt broker %s refused connection: reason %d", broker, ack.ReasonCode)
	}

	return client, nil
}

// MQTT publishes each point as JSON to <prefix>/<channel>.
// Publishing blocks until the broker accepts the packet; wrap the sink in Async when called
// from the sampling loop.
type MQTT struct {
	client  *paho.Client
	prefix  string
	qos     byte
	timeout time.Duration
}

// NewMQTT creates a sink publishing through client.
func NewMQTT(client *paho.Client, prefix string, qos byte) *MQTT {
	return &MQTT{
		client:  client,
		prefix:  prefix,
		qos:     qos,
		timeout: 5 * time.Second,
	}
}

// Topic returns the topic for channel.
func (m *MQTT) Topic(channel string) string {
	return m.prefix + "/" + channel
}

func (m *MQTT) Emit(p Point) error {
	payload, err := p.Encode()
	if err != nil {
		return &WriteError{Sink: "mqtt", Channel: p.Channel, Err: err}
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	_, err = m.client.Publish(ctx, &paho.Publish{
		Topic:   m.Topic(p.Channel),
		QoS:     m.qos,
		Payload: payload,
		Properties: &paho.PublishProperties{
			ContentType: "application/json",
		},
	})
	if err != nil {
		return &WriteError{Sink: "mqtt", Channel: p.Channel, Err: err}
	}
	return nil
}

// Close disconnects from the broker.
func (m *MQTT) Close() error {
	return m.client.Disconnect(&paho.Disconnect{ReasonCode: 0})
}
