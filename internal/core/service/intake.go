package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/yithume/dispatch/internal/core/domain"
	"github.com/yithume/dispatch/internal/port"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrInvalidStatus = errors.New("invalid order status")
)

const listOrdersLimit = 50

type OrderDraft struct {
	Zone          string
	Address       string
	CustomerName  string
	CustomerPhone string
	Items         []domain.OrderItem
	DeliveryFee   float64
	RushFee       float64
	PaymentMethod string
}

// Intake accepts submitted carts, screens them for fraud and tracks manual
// status changes up to the point where the assigner takes over.
type Intake struct {
	orders port.OrderRepository
	idgen  port.IDGenerator
	now    func() time.Time
	events port.EventPublisher
	audit  port.AuditSink
	logger *zap.Logger
}

func NewIntake(
	orders port.OrderRepository,
	idgen port.IDGenerator,
	now func() time.Time,
	events port.EventPublisher,
	audit port.AuditSink,
	logger *zap.Logger,
) *Intake {
	return &Intake{orders: orders, idgen: idgen, now: now, events: events, audit: audit, logger: logger}
}

// SubmitOrder creates an order from a cart. Cash orders start pending; any
// other payment method waits for payment confirmation. A fraud score at or
// above the review threshold parks the order for manual review.
func (i *Intake) SubmitOrder(ctx context.Context, draft OrderDraft) (domain.Order, error) {
	if draft.Zone == "" {
		return domain.Order{}, fmt.Errorf("zone is required")
	}
	now := i.now()

	method := draft.PaymentMethod
	if method == "" {
		method = "cash"
	}
	status := domain.OrderStatusPending
	if method != "cash" {
		status = domain.OrderStatusAwaitingPayment
	}

	order := domain.Order{
		ID:            i.idgen.OrderID(now),
		Zone:          draft.Zone,
		Address:       draft.Address,
		CustomerName:  draft.CustomerName,
		CustomerPhone: draft.CustomerPhone,
		Items:         draft.Items,
		DeliveryFee:   draft.DeliveryFee,
		RushFee:       draft.RushFee,
		PaymentMethod: method,
		Status:        status,
		CreatedAt:     now,
	}

	err := i.orders.Update(ctx, func(orders map[string]domain.Order) error {
		report := ScoreOrder(order, orders, now)
		order.FraudScore = report.Score
		order.FraudFlags = report.Flags
		if report.Score >= FraudReviewThreshold {
			order.Status = domain.OrderStatusReviewRequired
		}
		orders[order.ID] = order
		return nil
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("store order: %w", err)
	}

	detail, _ := json.Marshal(order)
	_ = i.audit.Record(ctx, domain.AuditEntry{
		Entity:   "orders",
		EntityID: order.ID,
		Action:   "create_order",
		Detail:   string(detail),
		Actor:    "system",
		At:       now,
	})
	i.events.StateChanged(ctx)

	if order.Status == domain.OrderStatusReviewRequired {
		i.logger.Warn("order flagged for review",
			zap.String("order_id", order.ID),
			zap.Float64("score", order.FraudScore),
			zap.Strings("flags", order.FraudFlags))
	}
	return order, nil
}

// ListOrders returns orders newest first, optionally filtered by status,
// capped for dashboard use.
func (i *Intake) ListOrders(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	orders, err := i.orders.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].CreatedAt.After(out[b].CreatedAt)
		}
		return out[a].ID < out[b].ID
	})
	if len(out) > listOrdersLimit {
		out = out[:listOrdersLimit]
	}
	return out, nil
}

// UpdateOrderStatus handles manual transitions (payment confirmation, review
// outcomes). Batched orders are owned by the batch lifecycle, and the
// assigned/delivered statuses can only be reached through it.
func (i *Intake) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (domain.Order, error) {
	if !status.Valid() || status == domain.OrderStatusAssigned || status == domain.OrderStatusDelivered {
		return domain.Order{}, ErrInvalidStatus
	}
	var updated domain.Order
	err := i.orders.Update(ctx, func(orders map[string]domain.Order) error {
		o, ok := orders[orderID]
		if !ok {
			return ErrOrderNotFound
		}
		if o.BatchID != "" {
			return ErrInvalidStatus
		}
		o.Status = status
		orders[orderID] = o
		updated = o
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrInvalidStatus) {
			return domain.Order{}, err
		}
		return domain.Order{}, fmt.Errorf("update order %s: %w", orderID, err)
	}

	_ = i.audit.Record(ctx, domain.AuditEntry{
		Entity:   "orders",
		EntityID: orderID,
		Action:   "status_change",
		Detail:   fmt.Sprintf(`{"status":%q}`, status),
		Actor:    "system",
		At:       i.now(),
	})
	i.events.StateChanged(ctx)
	return updated, nil
}
