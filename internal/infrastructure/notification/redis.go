package notification

import (
	"context"
	"fmt"

	appprinting "github.com/printshop/backend/internal/application/printing"
	"github.com/redis/go-redis/v9"
)

// RedisNotifier publishes notifications on a pub/sub channel per audience,
// named "<prefix>:<kind>:<id>".
type RedisNotifier struct {
	client *redis.Client
	prefix string
}

var _ appprinting.Notifier = (*RedisNotifier)(nil)

// NewRedisNotifier creates a RedisNotifier over a shared client
func NewRedisNotifier(client *redis.Client, prefix string) *RedisNotifier {
	if prefix == "" {
		prefix = "notify"
	}
	return &RedisNotifier{client: client, prefix: prefix}
}

// Channel returns the pub/sub channel for audience
func (n *RedisNotifier) Channel(audience appprinting.Audience) string {
	return n.prefix + ":" + audience.String()
}

// Emit implements Notifier
func (n *RedisNotifier) Emit(ctx context.Context, audience appprinting.Audience, event string, payload any) error {
	body, err := Encode(audience, event, payload)
	if err != nil {
		return err
	}
	if err := n.client.Publish(ctx, n.Channel(audience), body).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}
