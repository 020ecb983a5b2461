package accessory

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/eclipse/paho.golang/paho"
)

type update struct {
	c     Characteristic
	value float64
}

// MQTT publishes each characteristic as a retained plain-text value on
// <prefix>/<characteristic> whenever it changes. Publishing happens on a worker goroutine;
// updates arriving while the queue is full are dropped and re-sent on the next change.
type MQTT struct {
	client *paho.Client
	prefix string
	qos    byte
	log    *slog.Logger

	mu    sync.Mutex
	last  map[Characteristic]float64
	queue chan update
	done  chan struct{}
	once  sync.Once
}

// NewMQTT starts a notifier publishing through client.
func NewMQTT(client *paho.Client, prefix string, qos byte, log *slog.Logger) *MQTT {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	m := &MQTT{
		client: client,
		prefix: prefix,
		qos:    qos,
		log:    log.With("notifier", "mqtt"),
		last:   make(map[Characteristic]float64),
		queue:  make(chan update, 2*len(Characteristics)),
		done:   make(chan struct{}),
	}
	go m.run()
	return m
}

// Topic returns the topic for c.
func (m *MQTT) Topic(c Characteristic) string {
	return m.prefix + "/" + c.String()
}

func (m *MQTT) Notify(c Characteristic, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.last == nil {
		return
	}
	if prev, ok := m.last[c]; ok && prev == value {
		return
	}

	select {
	case m.queue <- update{c: c, value: value}:
		m.last[c] = value
	default:
		m.log.Warn("queue full, dropping update", "characteristic", c)
	}
}

func (m *MQTT) run() {
	defer close(m.done)

	for u := range m.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, err := m.client.Publish(ctx, &paho.Publish{
			Topic:   m.Topic(u.c),
			QoS:     m.qos,
			Retain:  true,
			Payload: []byte(strconv.FormatFloat(u.value, 'f', -1, 64)),
		})
		cancel()
		if err != nil {
			m.log.Error("publish failed", "characteristic", u.c, "error", err)
			m.forget(u.c)
		}
	}
}

// forget clears the cached value so the next notification is published again.
func (m *MQTT) forget(c Characteristic) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last != nil {
		delete(m.last, c)
	}
}

// Close flushes queued updates and disconnects from the broker.
func (m *MQTT) Close() error {
	m.once.Do(func() {
		m.mu.Lock()
		m.last = nil
		close(m.queue)
		m.mu.Unlock()
	})
	<-m.done
	return m.client.Disconnect(&paho.Disconnect{ReasonCode: 0})
}
