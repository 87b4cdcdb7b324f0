package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yithume/dispatch/internal/core/domain"
	"github.com/yithume/dispatch/internal/port"
)

type AssignerConfig struct {
	FirstShare float64
	NextShare  float64
}

// DefaultAssignerConfig returns the standard earnings split. Callers wanting
// different shares, including a genuine zero, set the fields explicitly; the
// constructor takes the config as given.
func DefaultAssignerConfig() AssignerConfig {
	return AssignerConfig{FirstShare: DefaultFirstShare, NextShare: DefaultNextShare}
}

// Assigner groups eligible paid orders into per-driver delivery batches.
type Assigner struct {
	orders    port.OrderRepository
	batches   port.BatchRepository
	directory *Directory
	cfg       AssignerConfig
	idgen     port.IDGenerator
	now       func() time.Time
	events    port.EventPublisher
	audit     port.AuditSink
	logger    *zap.Logger
}

func NewAssigner(
	orders port.OrderRepository,
	batches port.BatchRepository,
	directory *Directory,
	cfg AssignerConfig,
	idgen port.IDGenerator,
	now func() time.Time,
	events port.EventPublisher,
	audit port.AuditSink,
	logger *zap.Logger,
) *Assigner {
	return &Assigner{
		orders:    orders,
		batches:   batches,
		directory: directory,
		cfg:       cfg,
		idgen:     idgen,
		now:       now,
		events:    events,
		audit:     audit,
		logger:    logger,
	}
}

// AutoAssign scans for paid, unbatched orders, clusters them by cluster key
// and creates one batch per cluster. Clusters whose zone has no driver are
// skipped and picked up again on the next pass. Orders are marked assigned in
// the same collection write that decides eligibility, so a second concurrent
// or subsequent call cannot double-assign: it simply finds nothing eligible
// and returns an empty list.
func (a *Assigner) AutoAssign(ctx context.Context) ([]domain.Batch, error) {
	var created []domain.Batch
	err := a.orders.Update(ctx, func(orders map[string]domain.Order) error {
		groups := make(map[string][]string)
		for _, id := range sortedKeys(orders) {
			o := orders[id]
			if o.Status != domain.OrderStatusPaid || o.BatchID != "" {
				continue
			}
			key := ClusterKey(o.Zone, o.Address)
			groups[key] = append(groups[key], id)
		}

		for _, key := range sortedKeys(groups) {
			memberIDs := groups[key]
			first := orders[memberIDs[0]]

			driver, err := a.directory.ResolveDriverForZone(ctx, first.Zone)
			if err != nil {
				if errors.Is(err, ErrDriverNotFound) {
					a.logger.Warn("no driver for cluster, skipping",
						zap.String("cluster_key", key),
						zap.Int("orders", len(memberIDs)))
					continue
				}
				return err
			}

			// All orders in a cluster share one zone and are assumed to share
			// one fee structure; the first order's fee is authoritative.
			fee := first.DeliveryFee + first.RushFee
			split := SplitClusterEarnings(len(memberIDs), fee, a.cfg.FirstShare, a.cfg.NextShare)

			now := a.now()
			batch := domain.Batch{
				ID:             a.idgen.BatchID(now),
				Zone:           first.Zone,
				ClusterKey:     key,
				Driver:         driver,
				OrderIDs:       memberIDs,
				FeePerOrder:    fee,
				DriverEarnings: split.DriverTotal,
				PlatformMargin: split.PlatformMargin,
				Status:         domain.BatchStatusAssigned,
				CreatedAt:      now,
			}
			for _, oid := range memberIDs {
				o := orders[oid]
				o.Status = domain.OrderStatusAssigned
				o.BatchID = batch.ID
				orders[oid] = o
			}
			created = append(created, batch)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("assign orders: %w", err)
	}
	if len(created) == 0 {
		return nil, nil
	}

	err = a.batches.Update(ctx, func(batches map[string]domain.Batch) error {
		for _, b := range created {
			batches[b.ID] = b
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store batches: %w", err)
	}

	for _, b := range created {
		detail, _ := json.Marshal(map[string]any{
			"driver_id": b.Driver.ID,
			"orders":    len(b.OrderIDs),
			"earnings":  b.DriverEarnings,
			"margin":    b.PlatformMargin,
		})
		_ = a.audit.Record(ctx, domain.AuditEntry{
			Entity:   "batches",
			EntityID: b.ID,
			Action:   "auto_assign",
			Detail:   string(detail),
			Actor:    "system",
			At:       b.CreatedAt,
		})
	}
	a.events.StateChanged(ctx)
	a.logger.Info("auto-assign pass complete", zap.Int("batches", len(created)))
	return created, nil
}
