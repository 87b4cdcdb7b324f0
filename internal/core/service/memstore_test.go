package service

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yithume/dispatch/internal/core/domain"
)

// In-memory collection repository mirroring the adapter contract: Update is
// serialized and commits nothing when fn errors.
type memCollection[V any] struct {
	mu   sync.Mutex
	data map[string]V
}

func newMemCollection[V any]() *memCollection[V] {
	return &memCollection[V]{data: make(map[string]V)}
}

func (m *memCollection[V]) All(ctx context.Context) (map[string]V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.data), nil
}

func (m *memCollection[V]) Update(ctx context.Context, fn func(map[string]V) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	work := maps.Clone(m.data)
	if err := fn(work); err != nil {
		return err
	}
	m.data = work
	return nil
}

func (m *memCollection[V]) put(id string, v V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[id] = v
}

func (m *memCollection[V]) get(id string) V {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[id]
}

type stubEvents struct {
	mu    sync.Mutex
	fired int
}

func (e *stubEvents) StateChanged(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fired++
}

type memAudit struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (a *memAudit) Record(ctx context.Context, entry domain.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
	return nil
}

type seqIDGen struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDGen) next(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", prefix, g.n)
}

func (g *seqIDGen) OrderID(time.Time) string  { return g.next("ORD") }
func (g *seqIDGen) DriverID(time.Time) string { return g.next("DRV") }
func (g *seqIDGen) BatchID(time.Time) string  { return g.next("BAT") }
func (g *seqIDGen) PayoutID(time.Time) string { return g.next("PAY") }

// Wednesday 2026-01-07; its ISO week runs Monday Jan 5 through Sunday Jan 11.
var testNow = time.Date(2026, time.January, 7, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type engineFixture struct {
	orders  *memCollection[domain.Order]
	drivers *memCollection[domain.Driver]
	batches *memCollection[domain.Batch]
	payouts *memCollection[domain.Payout]
	events  *stubEvents
	audit   *memAudit

	directory  *Directory
	assigner   *Assigner
	lifecycle  *Lifecycle
	aggregator *PayoutAggregator
	intake     *Intake
}

func newEngineFixture(upsertPayouts bool) *engineFixture {
	f := &engineFixture{
		orders:  newMemCollection[domain.Order](),
		drivers: newMemCollection[domain.Driver](),
		batches: newMemCollection[domain.Batch](),
		payouts: newMemCollection[domain.Payout](),
		events:  &stubEvents{},
		audit:   &memAudit{},
	}
	ids := &seqIDGen{}
	logger := zap.NewNop()
	f.directory = NewDirectory(f.drivers, ids, fixedClock, f.audit)
	f.assigner = NewAssigner(f.orders, f.batches, f.directory, DefaultAssignerConfig(), ids, fixedClock, f.events, f.audit, logger)
	f.lifecycle = NewLifecycle(f.orders, f.batches, fixedClock, f.events, f.audit, logger)
	f.aggregator = NewPayoutAggregator(f.batches, f.payouts, ids, fixedClock, f.events, f.audit, logger, upsertPayouts)
	f.intake = NewIntake(f.orders, ids, fixedClock, f.events, f.audit, logger)
	return f
}

func paidOrder(id, zone, address string, deliveryFee, rushFee float64) domain.Order {
	return domain.Order{
		ID:          id,
		Zone:        zone,
		Address:     address,
		DeliveryFee: deliveryFee,
		RushFee:     rushFee,
		Status:      domain.OrderStatusPaid,
		CreatedAt:   testNow.Add(-time.Hour),
	}
}
