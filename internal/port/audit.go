package port

import (
	"context"

	"github.com/yithume/dispatch/internal/core/domain"
)

type AuditSink interface {
	Record(ctx context.Context, entry domain.AuditEntry) error
}
