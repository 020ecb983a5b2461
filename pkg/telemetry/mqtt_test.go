package telemetry

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/eclipse/paho.golang/paho"
	mochi "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startBroker runs an in-process broker on a free port and returns its address.
func startBroker(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	broker := mochi.New(nil)
	require.NoError(t, broker.AddHook(&auth.AllowHook{}, nil))
	require.NoError(t, broker.AddListener(listeners.NewTCP(listeners.Config{
		ID:      fmt.Sprintf("t%d", time.Now().UnixNano()),
		Type:    "tcp",
		Address: addr,
	})))
	require.NoError(t, broker.Serve())
	t.Cleanup(func() { _ = broker.Close() })

	return addr
}

func subscribe(ctx context.Context, t *testing.T, addr, topic string) <-chan *paho.Publish {
	t.Helper()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	require.NoError(t, err)

	msgs := make(chan *paho.Publish, 8)
	c := paho.NewClient(paho.ClientConfig{
		ClientID: "subscriber",
		Conn:     conn,
		OnPublishReceived: []func(paho.PublishReceived) (bool, error){
			func(pub paho.PublishReceived) (bool, error) {
				msgs <- pub.Packet
				return true, nil
			},
		},
	})
	_, err = c.Connect(ctx, &paho.Connect{ClientID: "subscriber", KeepAlive: 5, CleanStart: true})
	require.NoError(t, err)
	_, err = c.Subscribe(ctx, &paho.Subscribe{
		Subscriptions: []paho.SubscribeOptions{{Topic: topic, QoS: 1}},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Disconnect(&paho.Disconnect{ReasonCode: 0}) })

	return msgs
}

func TestMQTT_Publish(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	addr := startBroker(t)
	msgs := subscribe(ctx, t, addr, "goaq/#")

	client, err := DialMQTT(ctx, addr, "station", nil)
	require.NoError(t, err)
	sink := NewMQTT(client, "goaq", 1)
	defer sink.Close()

	p := testPoint()
	require.NoError(t, sink.Emit(p))

	select {
	case msg := <-msgs:
		assert.Equal(t, "goaq/temperature", msg.Topic)
		got, err := Decode(msg.Payload)
		require.NoError(t, err)
		assert.Equal(t, p.Fields, got.Fields)
		assert.Equal(t, p.Tags, got.Tags)
	case <-ctx.Done():
		t.Fatal("no message received")
	}
}

func TestDialMQTT_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := DialMQTT(ctx, "127.0.0.1:1", "station", nil)
	assert.Error(t, err)
}
