package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yithume/dispatch/internal/core/domain"
	"github.com/yithume/dispatch/internal/port"
)

var ErrBatchNotFound = errors.New("batch not found")

// Lifecycle drives a batch through its one-way assigned -> completed
// transition and cascades the status to the member orders.
type Lifecycle struct {
	orders  port.OrderRepository
	batches port.BatchRepository
	now     func() time.Time
	events  port.EventPublisher
	audit   port.AuditSink
	logger  *zap.Logger
}

func NewLifecycle(
	orders port.OrderRepository,
	batches port.BatchRepository,
	now func() time.Time,
	events port.EventPublisher,
	audit port.AuditSink,
	logger *zap.Logger,
) *Lifecycle {
	return &Lifecycle{orders: orders, batches: batches, now: now, events: events, audit: audit, logger: logger}
}

// CompleteBatch marks the batch completed and every member order delivered.
// Unknown IDs return ErrBatchNotFound with nothing mutated. Completing an
// already-completed batch is a no-op that returns the stored record.
func (l *Lifecycle) CompleteBatch(ctx context.Context, batchID string) (domain.Batch, error) {
	var completed domain.Batch
	alreadyDone := false
	err := l.batches.Update(ctx, func(batches map[string]domain.Batch) error {
		b, ok := batches[batchID]
		if !ok {
			return ErrBatchNotFound
		}
		if b.Status == domain.BatchStatusCompleted {
			completed = b
			alreadyDone = true
			return nil
		}
		b.Status = domain.BatchStatusCompleted
		b.CompletedAt = l.now()
		batches[batchID] = b
		completed = b
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrBatchNotFound) {
			return domain.Batch{}, err
		}
		return domain.Batch{}, fmt.Errorf("complete batch %s: %w", batchID, err)
	}
	if alreadyDone {
		return completed, nil
	}

	err = l.orders.Update(ctx, func(orders map[string]domain.Order) error {
		for _, oid := range completed.OrderIDs {
			o, ok := orders[oid]
			if !ok {
				l.logger.Warn("batch references missing order",
					zap.String("batch_id", batchID), zap.String("order_id", oid))
				continue
			}
			o.Status = domain.OrderStatusDelivered
			orders[oid] = o
		}
		return nil
	})
	if err != nil {
		return domain.Batch{}, fmt.Errorf("deliver orders for batch %s: %w", batchID, err)
	}

	_ = l.audit.Record(ctx, domain.AuditEntry{
		Entity:   "batches",
		EntityID: batchID,
		Action:   "complete_batch",
		Detail:   fmt.Sprintf(`{"orders":%d}`, len(completed.OrderIDs)),
		Actor:    "system",
		At:       completed.CompletedAt,
	})
	l.events.StateChanged(ctx)
	return completed, nil
}
