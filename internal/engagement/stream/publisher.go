// Package stream publishes activity events to Kafka for downstream
// analytics. Publishing is best-effort: a broker outage never blocks
// or fails the operation that recorded the activity.
package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"relato/internal/engagement/models"
)

const DefaultTopic = "relato.activity.events"

type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

type Option func(*Publisher)

func WithLogger(l *slog.Logger) Option {
	return func(p *Publisher) { p.logger = l }
}

func WithTopic(topic string) Option {
	return func(p *Publisher) { p.topic = topic }
}

// New wraps a Kafka client for activity publishing. A nil client
// yields a publisher that drops everything, which keeps wiring
// uniform when no brokers are configured.
func New(client *kgo.Client, opts ...Option) *Publisher {
	p := &Publisher{
		client: client,
		topic:  DefaultTopic,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type activityRecord struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	Type       string         `json:"type"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Publish sends the event asynchronously, keyed by user so a user's
// activity stays ordered within a partition. Delivery failures are
// logged and discarded.
func (p *Publisher) Publish(ctx context.Context, event models.ActivityEvent) {
	if p.client == nil {
		return
	}

	payload, err := json.Marshal(activityRecord{
		ID:         event.ID.String(),
		UserID:     event.UserID.String(),
		Type:       string(event.Type),
		Metadata:   event.Metadata,
		OccurredAt: event.OccurredAt.UTC(),
	})
	if err != nil {
		p.logger.ErrorContext(ctx, "marshal activity record", "error", err, "event_id", event.ID)
		return
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.UserID.String()),
		Value: payload,
	}
	p.client.Produce(context.WithoutCancel(ctx), record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("publish activity record", "error", err, "event_id", event.ID)
		}
	})
}
