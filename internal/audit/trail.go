// Package audit decouples audit writes from the dispatch path: entries are
// queued and drained by background workers so a slow or down audit database
// never blocks an assignment or payout run.
package audit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yithume/dispatch/internal/core/domain"
	"github.com/yithume/dispatch/internal/port"
)

const recordTimeout = 5 * time.Second

// Trail implements port.AuditSink over a bounded queue. A full queue drops
// the entry with a log line rather than blocking the caller.
type Trail struct {
	sink   port.AuditSink
	queue  chan domain.AuditEntry
	logger *zap.Logger
	wg     sync.WaitGroup
}

func NewTrail(sink port.AuditSink, queueSize int, logger *zap.Logger) *Trail {
	return &Trail{
		sink:   sink,
		queue:  make(chan domain.AuditEntry, queueSize),
		logger: logger,
	}
}

func (t *Trail) Start(workers int) {
	for i := 0; i < workers; i++ {
		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			t.drain()
		}()
	}
}

func (t *Trail) drain() {
	for entry := range t.queue {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		if err := t.sink.Record(ctx, entry); err != nil {
			t.logger.Error("audit write failed",
				zap.String("entity", entry.Entity),
				zap.String("entity_id", entry.EntityID),
				zap.String("action", entry.Action),
				zap.Error(err))
		}
		cancel()
	}
}

func (t *Trail) Record(ctx context.Context, entry domain.AuditEntry) error {
	select {
	case t.queue <- entry:
	default:
		t.logger.Warn("audit queue full, dropping entry",
			zap.String("entity", entry.Entity),
			zap.String("action", entry.Action))
	}
	return nil
}

// Close stops accepting entries and waits for the workers to flush the queue.
func (t *Trail) Close() {
	close(t.queue)
	t.wg.Wait()
}

// NopSink discards entries; used when no audit database is configured.
type NopSink struct{}

func (NopSink) Record(context.Context, domain.AuditEntry) error { return nil }
