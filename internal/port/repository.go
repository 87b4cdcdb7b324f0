package port

import (
	"context"

	"github.com/yithume/dispatch/internal/core/domain"
)

// Each collection repository exposes a snapshot read and a read-apply-write
// primitive. Update is atomic per collection: the adapter serializes callers,
// and when fn returns an error nothing is written back.

type OrderRepository interface {
	All(ctx context.Context) (map[string]domain.Order, error)
	Update(ctx context.Context, fn func(orders map[string]domain.Order) error) error
}

type DriverRepository interface {
	All(ctx context.Context) (map[string]domain.Driver, error)
	Update(ctx context.Context, fn func(drivers map[string]domain.Driver) error) error
}

type BatchRepository interface {
	All(ctx context.Context) (map[string]domain.Batch, error)
	Update(ctx context.Context, fn func(batches map[string]domain.Batch) error) error
}

type PayoutRepository interface {
	All(ctx context.Context) (map[string]domain.Payout, error)
	Update(ctx context.Context, fn func(payouts map[string]domain.Payout) error) error
}
