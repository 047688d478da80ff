// Package publisher fans notifications out over Redis pub/sub so
// connected clients receive them live. Persistence is the store's job;
// the channel carries only the wakeup.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"relato/internal/notification/models"
	platformRedis "relato/internal/platform/redis"
)

const channelPrefix = "relato:notifications:"

type Redis struct {
	client *platformRedis.Client
}

// NewRedis wraps the shared Redis client. A nil client yields a
// publisher that drops everything.
func NewRedis(client *platformRedis.Client) *Redis {
	return &Redis{client: client}
}

// Publish pushes the notification onto the user's channel.
func (p *Redis) Publish(ctx context.Context, n models.Notification) error {
	if p.client == nil {
		return nil
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	channel := channelPrefix + n.UserID.String()
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}
