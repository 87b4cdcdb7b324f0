package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yithume/dispatch/internal/core/domain"
	"github.com/yithume/dispatch/internal/port"
)

// PayoutAggregator rolls completed batches up into one payout per driver per
// Monday-Sunday week. The legacy behavior appends a fresh payout on every run;
// with Upsert enabled payouts are keyed on (driver, week label) and re-running
// a week recomputes the existing record instead of duplicating it.
type PayoutAggregator struct {
	batches port.BatchRepository
	payouts port.PayoutRepository
	idgen   port.IDGenerator
	now     func() time.Time
	events  port.EventPublisher
	audit   port.AuditSink
	logger  *zap.Logger
	upsert  bool
}

func NewPayoutAggregator(
	batches port.BatchRepository,
	payouts port.PayoutRepository,
	idgen port.IDGenerator,
	now func() time.Time,
	events port.EventPublisher,
	audit port.AuditSink,
	logger *zap.Logger,
	upsert bool,
) *PayoutAggregator {
	return &PayoutAggregator{
		batches: batches,
		payouts: payouts,
		idgen:   idgen,
		now:     now,
		events:  events,
		audit:   audit,
		logger:  logger,
		upsert:  upsert,
	}
}

// WeekWindow returns the Monday 00:00:00.000 through Sunday 23:59:59.999
// window containing ref, with Monday as day zero of the week. The end value
// is for display; selection compares against the following Monday so that no
// timestamp falls between two weeks.
func WeekWindow(ref time.Time) (start, end time.Time) {
	daysPastMonday := (int(ref.Weekday()) + 6) % 7
	start = time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location()).
		AddDate(0, 0, -daysPastMonday)
	end = start.AddDate(0, 0, 7).Add(-time.Millisecond)
	return start, end
}

// WeekLabel formats t's ISO week as "<year>-W<2-digit week>".
func WeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// GenerateWeeklyPayouts selects batches completed on or after the Monday of
// the week containing reference and before the following Monday, and produces
// one pending payout per driver, summing driver earnings, batch count and
// order count.
func (p *PayoutAggregator) GenerateWeeklyPayouts(ctx context.Context, reference time.Time) ([]domain.Payout, error) {
	start, end := WeekWindow(reference)
	next := start.AddDate(0, 0, 7)
	label := WeekLabel(start)

	batches, err := p.batches.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load batches: %w", err)
	}

	type driverWeek struct {
		driver     domain.Driver
		earnings   int64
		orderCount int
		batchCount int
	}
	totals := make(map[string]*driverWeek)
	for _, id := range sortedKeys(batches) {
		b := batches[id]
		if b.Status != domain.BatchStatusCompleted {
			continue
		}
		if b.CompletedAt.Before(start) || !b.CompletedAt.Before(next) {
			continue
		}
		dw, ok := totals[b.Driver.ID]
		if !ok {
			dw = &driverWeek{driver: b.Driver}
			totals[b.Driver.ID] = dw
		}
		dw.earnings += b.DriverEarnings
		dw.orderCount += len(b.OrderIDs)
		dw.batchCount++
	}
	if len(totals) == 0 {
		return nil, nil
	}

	var produced []domain.Payout
	err = p.payouts.Update(ctx, func(payouts map[string]domain.Payout) error {
		for _, driverID := range sortedKeys(totals) {
			dw := totals[driverID]
			now := p.now()
			payout := domain.Payout{
				ID:         p.idgen.PayoutID(now),
				WeekLabel:  label,
				WeekStart:  start,
				WeekEnd:    end,
				Driver:     dw.driver,
				Earnings:   dw.earnings,
				OrderCount: dw.orderCount,
				BatchCount: dw.batchCount,
				Status:     domain.PayoutStatusPending,
				Reference:  label + "-" + driverSuffix(driverID),
				CreatedAt:  now,
			}
			if p.upsert {
				if existing, ok := findPayout(payouts, driverID, label); ok {
					// Recompute amounts in place; identity and payment status
					// of the existing record survive the re-run.
					payout.ID = existing.ID
					payout.CreatedAt = existing.CreatedAt
					payout.Status = existing.Status
				}
			}
			payouts[payout.ID] = payout
			produced = append(produced, payout)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store payouts: %w", err)
	}

	for _, po := range produced {
		_ = p.audit.Record(ctx, domain.AuditEntry{
			Entity:   "payouts",
			EntityID: po.ID,
			Action:   "generate_weekly_payout",
			Detail:   fmt.Sprintf(`{"week":%q,"driver_id":%q,"earnings":%d}`, po.WeekLabel, po.Driver.ID, po.Earnings),
			Actor:    "system",
			At:       po.CreatedAt,
		})
	}
	p.events.StateChanged(ctx)
	p.logger.Info("weekly payouts generated",
		zap.String("week", label), zap.Int("payouts", len(produced)))
	return produced, nil
}

func findPayout(payouts map[string]domain.Payout, driverID, weekLabel string) (domain.Payout, bool) {
	for _, id := range sortedKeys(payouts) {
		po := payouts[id]
		if po.Driver.ID == driverID && po.WeekLabel == weekLabel {
			return po, true
		}
	}
	return domain.Payout{}, false
}

func driverSuffix(id string) string {
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	return strings.ToUpper(id)
}
