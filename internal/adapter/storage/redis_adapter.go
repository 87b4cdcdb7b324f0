package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/yithume/dispatch/internal/core/domain"
	"github.com/yithume/dispatch/internal/port"
)

// Each collection lives under one key as a single JSON document keyed by
// record ID, read and replaced wholesale.
const (
	ordersKey  = "dispatch:orders"
	driversKey = "dispatch:drivers"
	batchesKey = "dispatch:batches"
	payoutsKey = "dispatch:payouts"
)

// RedisStore keeps the four dispatch collections in Redis. Update holds a
// per-collection mutex around the whole load-apply-save cycle, so concurrent
// callers in this process never interleave partial state. A payload that no
// longer parses degrades to an empty collection instead of failing the
// operation.
type RedisStore struct {
	orders  *redisCollection[domain.Order]
	drivers *redisCollection[domain.Driver]
	batches *redisCollection[domain.Batch]
	payouts *redisCollection[domain.Payout]
}

func NewRedisStore(client *redis.Client, logger *zap.Logger) *RedisStore {
	return &RedisStore{
		orders:  &redisCollection[domain.Order]{client: client, key: ordersKey, logger: logger},
		drivers: &redisCollection[domain.Driver]{client: client, key: driversKey, logger: logger},
		batches: &redisCollection[domain.Batch]{client: client, key: batchesKey, logger: logger},
		payouts: &redisCollection[domain.Payout]{client: client, key: payoutsKey, logger: logger},
	}
}

func (s *RedisStore) Orders() port.OrderRepository   { return s.orders }
func (s *RedisStore) Drivers() port.DriverRepository { return s.drivers }
func (s *RedisStore) Batches() port.BatchRepository  { return s.batches }
func (s *RedisStore) Payouts() port.PayoutRepository { return s.payouts }

type redisCollection[T any] struct {
	client *redis.Client
	key    string
	logger *zap.Logger
	mu     sync.Mutex
}

func (c *redisCollection[T]) All(ctx context.Context) (map[string]T, error) {
	return c.load(ctx)
}

func (c *redisCollection[T]) Update(ctx context.Context, fn func(map[string]T) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(records); err != nil {
		return err
	}
	return c.save(ctx, records)
}

func (c *redisCollection[T]) load(ctx context.Context) (map[string]T, error) {
	val, err := c.client.Get(ctx, c.key).Result()
	if err == redis.Nil {
		return make(map[string]T), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.key, err)
	}
	records := make(map[string]T)
	if err := json.Unmarshal([]byte(val), &records); err != nil {
		c.logger.Warn("malformed stored collection, substituting empty",
			zap.String("key", c.key), zap.Error(err))
		return make(map[string]T), nil
	}
	return records, nil
}

func (c *redisCollection[T]) save(ctx context.Context, records map[string]T) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.key, err)
	}
	if err := c.client.Set(ctx, c.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("save %s: %w", c.key, err)
	}
	return nil
}
