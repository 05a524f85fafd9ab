// Package broker fans notification events out to every running instance
// over a RabbitMQ fanout exchange, so a user connected to one instance hears
// about changes made on another.
package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"rasa-cafe/notification"
)

const (
	exchange       = "cafe_notifications"
	publishTimeout = 5 * time.Second
)

// envelope is the wire form of one event.
type envelope struct {
	Target    string             `json:"target,omitempty"`
	Exclude   string             `json:"exclude,omitempty"`
	Broadcast bool               `json:"broadcast"`
	Event     notification.Event `json:"event"`
}

// publisher is the part of *amqp.Channel the relay publishes through.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Relay publishes events to the exchange and delivers everything it
// consumes into the local hub. Publishing failures fall back to local
// delivery.
type Relay struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	pub  publisher
	hub  *notification.Hub
	log  *zap.Logger
}

func Dial(url string, hub *notification.Hub, log *zap.Logger) (*Relay, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Relay{conn: conn, ch: ch, pub: ch, hub: hub, log: log}, nil
}

func (r *Relay) SendToUser(userID string, e notification.Event) bool {
	if err := r.publish(envelope{Target: userID, Event: e}); err != nil {
		r.log.Warn("publish failed, delivering locally", zap.Error(err))
		return r.hub.SendToUser(userID, e)
	}
	return true
}

// Broadcast returns the number of local recipients when it falls back to the
// hub. Once published, recipients live on every instance and are not
// counted, so it returns 0.
func (r *Relay) Broadcast(e notification.Event, excludeUserID string) int {
	if err := r.publish(envelope{Broadcast: true, Exclude: excludeUserID, Event: e}); err != nil {
		r.log.Warn("publish failed, delivering locally", zap.Error(err))
		return r.hub.Broadcast(e, excludeUserID)
	}
	return 0
}

func (r *Relay) publish(env envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	return r.pub.PublishWithContext(ctx, exchange, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Transient,
		Timestamp:    time.Now(),
		Body:         body,
	})
}

// Run consumes from a private queue bound to the exchange until ctx ends
// or the broker closes the channel.
func (r *Relay) Run(ctx context.Context) error {
	q, err := r.ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := r.ch.QueueBind(q.Name, "", exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	deliveries, err := r.ch.ConsumeWithContext(ctx, q.Name, "", true, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	r.log.Info("notification relay started", zap.String("queue", q.Name))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("rabbitmq delivery channel closed")
			}
			if err := r.deliver(d.Body); err != nil {
				r.log.Warn("dropping malformed notification", zap.Error(err))
			}
		}
	}
}

func (r *Relay) deliver(body []byte) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return err
	}
	switch {
	case env.Broadcast:
		r.hub.Broadcast(env.Event, env.Exclude)
	case env.Target != "":
		r.hub.SendToUser(env.Target, env.Event)
	default:
		return errors.New("envelope has no target")
	}
	return nil
}

func (r *Relay) Close() error {
	if r.ch != nil && !r.ch.IsClosed() {
		if err := r.ch.Close(); err != nil {
			return fmt.Errorf("close rabbitmq channel: %w", err)
		}
	}
	if r.conn != nil && !r.conn.IsClosed() {
		if err := r.conn.Close(); err != nil {
			return fmt.Errorf("close rabbitmq connection: %w", err)
		}
	}
	return nil
}
