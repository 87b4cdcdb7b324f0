package storage

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const eventsChannel = "dispatch:events"

// RedisPublisher broadcasts state-change notifications over Redis pub/sub for
// dashboards and other listeners. Publish failures are logged and swallowed.
type RedisPublisher struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisPublisher(client *redis.Client, logger *zap.Logger) *RedisPublisher {
	return &RedisPublisher{client: client, logger: logger}
}

func (p *RedisPublisher) StateChanged(ctx context.Context) {
	if err := p.client.Publish(ctx, eventsChannel, "state_changed").Err(); err != nil {
		p.logger.Warn("state change publish failed", zap.Error(err))
	}
}
