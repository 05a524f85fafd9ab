package broker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rasa-cafe/notification"
)

func newTestRelay() (*Relay, *notification.Hub) {
	hub := notification.NewHub(nil)
	return &Relay{hub: hub, log: zap.NewNop()}, hub
}

func TestDeliverTargetedEnvelope(t *testing.T) {
	r, hub := newTestRelay()
	alice, bob := notification.NewClient(), notification.NewClient()
	hub.Register("alice", alice)
	hub.Register("bob", bob)

	body, err := json.Marshal(envelope{Target: "alice", Event: notification.OrderUpdate("20250101-4", "Completed")})
	require.NoError(t, err)
	require.NoError(t, r.deliver(body))

	require.Len(t, alice.Events(), 1)
	assert.Equal(t, notification.OrderUpdate("20250101-4", "Completed"), <-alice.Events())
	assert.Empty(t, bob.Events())
}

func TestDeliverBroadcastEnvelope(t *testing.T) {
	r, hub := newTestRelay()
	alice, bob := notification.NewClient(), notification.NewClient()
	hub.Register("alice", alice)
	hub.Register("bob", bob)

	body, err := json.Marshal(envelope{Broadcast: true, Exclude: "bob", Event: notification.StockDepleted("p1", "Latte")})
	require.NoError(t, err)
	require.NoError(t, r.deliver(body))

	assert.Len(t, alice.Events(), 1)
	assert.Empty(t, bob.Events())
}

func TestDeliverRejectsBadEnvelopes(t *testing.T) {
	r, _ := newTestRelay()
	assert.Error(t, r.deliver([]byte("not json")))
	assert.Error(t, r.deliver([]byte(`{"event":{"type":"ORDER_UPDATE"}}`)))
}

type stubPublisher struct {
	err  error
	sent []envelope
}

func (p *stubPublisher) PublishWithContext(_ context.Context, _, _ string, _, _ bool, msg amqp.Publishing) error {
	if p.err != nil {
		return p.err
	}
	var env envelope
	if err := json.Unmarshal(msg.Body, &env); err != nil {
		return err
	}
	p.sent = append(p.sent, env)
	return nil
}

func TestBroadcastPublishesWithoutCountingLocalClients(t *testing.T) {
	r, hub := newTestRelay()
	pub := &stubPublisher{}
	r.pub = pub
	alice, bob := notification.NewClient(), notification.NewClient()
	hub.Register("alice", alice)
	hub.Register("bob", bob)

	assert.Equal(t, 0, r.Broadcast(notification.StockDepleted("p1", "Latte"), "bob"))
	require.Len(t, pub.sent, 1)
	assert.True(t, pub.sent[0].Broadcast)
	assert.Equal(t, "bob", pub.sent[0].Exclude)
	assert.Empty(t, alice.Events())
}

func TestPublishFailureFallsBackToHub(t *testing.T) {
	r, hub := newTestRelay()
	r.pub = &stubPublisher{err: errors.New("channel closed")}
	alice, bob := notification.NewClient(), notification.NewClient()
	hub.Register("alice", alice)
	hub.Register("bob", bob)

	assert.Equal(t, 1, r.Broadcast(notification.StockDepleted("p1", "Latte"), "bob"))
	assert.Len(t, alice.Events(), 1)
	assert.Empty(t, bob.Events())

	assert.True(t, r.SendToUser("bob", notification.OrderUpdate("20250101-1", "Completed")))
	assert.Len(t, bob.Events(), 1)
}
