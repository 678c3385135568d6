// Package events announces session lifecycle events on RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"interview-coach-service/internal/domain"
)

const (
	// Exchange is the topic exchange every event is published to.
	Exchange = "interview-events"
	// RoutingKeySessionCompleted is used for SessionCompleted events.
	RoutingKeySessionCompleted = "session.completed"

	publishTimeout = 5 * time.Second
)

// SessionCompleted is the payload of a session.completed event.
type SessionCompleted struct {
	EventID     string                 `json:"eventId"`
	SessionID   string                 `json:"sessionId"`
	UserID      string                 `json:"userId"`
	Type        domain.SessionType     `json:"type"`
	Mode        domain.SessionMode     `json:"mode"`
	CompletedAt time.Time              `json:"completedAt"`
	Metrics     *domain.SessionMetrics `json:"metrics,omitempty"`
	PublishedAt time.Time              `json:"publishedAt"`
}

// amqpChannel is the part of *amqp091.Channel the publisher needs.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher publishes events to RabbitMQ. A publisher created without a URL is
// disabled and drops every event.
type Publisher struct {
	conn    *amqp091.Connection
	mu      sync.Mutex
	channel amqpChannel
	enabled bool
	now     func() time.Time
	logger  *slog.Logger
}

// NewPublisher dials url and declares the exchange. An empty url yields a disabled publisher.
func NewPublisher(url string) (*Publisher, error) {
	logger := slog.Default().With(slog.String("component", "events"))
	if url == "" {
		logger.Warn("rabbitmq url is empty, event publishing is disabled")
		return &Publisher{now: time.Now, logger: logger}, nil
	}

	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	err = channel.ExchangeDeclare(
		Exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Publisher{
		conn:    conn,
		channel: channel,
		enabled: true,
		now:     time.Now,
		logger:  logger,
	}, nil
}

// PublishCompleted publishes a session.completed event for s.
func (p *Publisher) PublishCompleted(ctx context.Context, s *domain.Session) error {
	event := SessionCompleted{
		EventID:     s.ID + ":completed",
		SessionID:   s.ID,
		UserID:      s.UserID,
		Type:        s.Type,
		Mode:        s.Mode,
		Metrics:     s.Metrics,
		PublishedAt: p.now().UTC(),
	}
	if s.CompletedAt != nil {
		event.CompletedAt = *s.CompletedAt
	}
	return p.publish(ctx, RoutingKeySessionCompleted, event)
}

func (p *Publisher) publish(ctx context.Context, routingKey string, event any) error {
	if !p.enabled {
		p.logger.Debug("event publishing is disabled, skipping event", slog.String("routing_key", routingKey))
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.PublishWithContext(
		pubCtx,
		Exchange,   // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    p.now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	p.logger.Debug("published event", slog.String("routing_key", routingKey))
	return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	if !p.enabled {
		return nil
	}
	if err := p.channel.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}
