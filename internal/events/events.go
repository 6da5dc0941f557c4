// Package events publishes session progress to a message broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"github.com/jonathan/screeniq/internal/types"
)

// Exchange is the topic exchange session updates are published to.
const Exchange = "session_updates"

// Update types
const (
	TypeStateChanged = "state_changed"
	TypeCompleted    = "completed"
)

// Update is one message about a session.
type Update struct {
	Type      string                `json:"type"`
	SessionID string                `json:"session_id"`
	JobID     string                `json:"job_id,omitempty"`
	From      string                `json:"from,omitempty"`
	To        string                `json:"to,omitempty"`
	Outcome   *types.SessionOutcome `json:"outcome,omitempty"`
	At        time.Time             `json:"at"`
}

// RoutingKey returns the topic routing key for a session.
func RoutingKey(sessionID string) string {
	return fmt.Sprintf("session.%s", sessionID)
}

// Publisher delivers session updates.
type Publisher interface {
	Publish(ctx context.Context, update Update) error
	Close() error
}

// NopPublisher discards every update.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, Update) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() error { return nil }

// channel is the subset of *amqp.Channel used for publishing.
type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes updates as JSON to the session_updates topic exchange.
type AMQPPublisher struct {
	mu   sync.Mutex
	conn *amqp.Connection
	ch   channel
}

// NewAMQPPublisher dials url and declares the exchange.
func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("error connecting to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		Exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", Exchange, err)
	}
	return &AMQPPublisher{conn: conn, ch: ch}, nil
}

// Publish sends update with routing key session.<id>.
func (p *AMQPPublisher) Publish(ctx context.Context, update Update) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if update.At.IsZero() {
		update.At = time.Now()
	}
	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal update: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return fmt.Errorf("publisher closed")
	}
	err = p.ch.Publish(
		Exchange,
		RoutingKey(update.SessionID),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    update.At,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s for session %s: %w", update.Type, update.SessionID, err)
	}
	return nil
}

// Close closes the channel and connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return nil
	}
	err := p.ch.Close()
	p.ch = nil
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Logged wraps a publisher so delivery failures are logged rather than returned.
// Session progress never depends on the broker being reachable.
func Logged(p Publisher) func(context.Context, Update) {
	return func(ctx context.Context, u Update) {
		if err := p.Publish(ctx, u); err != nil {
			log.Printf("[events] %v", err)
		}
	}
}
