package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-coach-service/internal/domain"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp091.Publishing
	err      error
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	c.exchange, c.key, c.msg = exchange, key, msg
	return c.err
}

func (c *fakeChannel) Close() error { return nil }

func TestPublishCompleted(t *testing.T) {
	ch := &fakeChannel{}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &Publisher{channel: ch, enabled: true, now: func() time.Time { return now }, logger: slog.Default()}

	completed := now.Add(-time.Minute)
	err := p.PublishCompleted(context.Background(), &domain.Session{
		ID:          "s1",
		UserID:      "u1",
		Type:        domain.SessionMixed,
		Mode:        domain.ModeMock,
		CompletedAt: &completed,
		Metrics:     &domain.SessionMetrics{AverageScore: 71.5},
	})
	require.NoError(t, err)

	assert.Equal(t, Exchange, ch.exchange)
	assert.Equal(t, RoutingKeySessionCompleted, ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)

	var event SessionCompleted
	require.NoError(t, json.Unmarshal(ch.msg.Body, &event))
	assert.Equal(t, "s1", event.SessionID)
	assert.Equal(t, "u1", event.UserID)
	assert.Equal(t, 71.5, event.Metrics.AverageScore)
	assert.True(t, event.CompletedAt.Equal(completed))
}

func TestPublishError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := &Publisher{channel: ch, enabled: true, now: time.Now, logger: slog.Default()}
	err := p.PublishCompleted(context.Background(), &domain.Session{ID: "s1"})
	assert.ErrorContains(t, err, "channel closed")
}

func TestDisabledPublisher(t *testing.T) {
	p, err := NewPublisher("")
	require.NoError(t, err)
	assert.NoError(t, p.PublishCompleted(context.Background(), &domain.Session{ID: "s1"}))
	assert.NoError(t, p.Close())
}
