package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yithume/dispatch/internal/core/domain"
)

// MySQLAuditLog persists audit entries:
//
//	CREATE TABLE audit_log (
//	    id BIGINT AUTO_INCREMENT PRIMARY KEY,
//	    entity VARCHAR(32) NOT NULL,
//	    entity_id VARCHAR(64) NOT NULL,
//	    action VARCHAR(64) NOT NULL,
//	    detail JSON,
//	    actor VARCHAR(64) NOT NULL,
//	    created_at DATETIME(3) NOT NULL
//	);
type MySQLAuditLog struct {
	db *sql.DB
}

func NewMySQLAuditLog(db *sql.DB) *MySQLAuditLog {
	return &MySQLAuditLog{db: db}
}

func (m *MySQLAuditLog) Record(ctx context.Context, entry domain.AuditEntry) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO audit_log (entity, entity_id, action, detail, actor, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.Entity, entry.EntityID, entry.Action, entry.Detail, entry.Actor, entry.At,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
