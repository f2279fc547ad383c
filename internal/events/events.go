// Package events publishes domain events to a RabbitMQ topic exchange.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Routing keys.
const (
	JobPosted            = "job.posted"
	ResumeParsed         = "resume.parsed"
	ApplicationSubmitted = "application.submitted"
)

// Event is the JSON envelope sent on the wire.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

// Publisher sends domain events.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, data any) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, string, any) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() error { return nil }

// AMQPPublisher publishes to a durable topic exchange over one channel.
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string

	mu sync.Mutex // amqp channels are not safe for concurrent publishing
}

// Dial connects to RabbitMQ and declares the exchange.
func Dial(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("error dialling rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("error opening rabbitmq channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-delete
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("error declaring exchange %s: %w", exchange, err)
	}

	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// Encode builds the message body for an event.
func Encode(routingKey string, data any, now time.Time) ([]byte, error) {
	return json.Marshal(Event{Type: routingKey, OccurredAt: now.UTC(), Data: data})
}

// Publish implements Publisher.
func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := Encode(routingKey, data, time.Now())
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", routingKey, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.Publish(
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

// Close closes the channel and connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	chErr := p.ch.Close()
	if err := p.conn.Close(); err != nil {
		return err
	}
	return chErr
}

// Logged wraps a Publisher so failures are logged instead of returned.
type Logged struct {
	next   Publisher
	logger *zap.Logger
}

// NewLogged creates a Logged publisher. A nil next publisher drops events.
func NewLogged(next Publisher, logger *zap.Logger) *Logged {
	if next == nil {
		next = NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logged{next: next, logger: logger}
}

// Publish implements Publisher. It never returns an error.
func (l *Logged) Publish(ctx context.Context, routingKey string, data any) error {
	if err := l.next.Publish(ctx, routingKey, data); err != nil {
		l.logger.Warn("event publish failed", zap.String("routing_key", routingKey), zap.Error(err))
	}
	return nil
}

// Close implements Publisher.
func (l *Logged) Close() error {
	return l.next.Close()
}
