package storage

import (
	"context"
	"fmt"
	"strings"
)

// AppendAudit inserts one audit entry. The log is append-only; entries
// are never updated or deleted by this system.
func (db *DB) AppendAudit(ctx context.Context, e *AuditEntry) error {
	query := `INSERT INTO dedup_audit_log (id, actor, action, entity_id, before_state, after_state, merged_fields, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`
	_, err := db.connection.ExecContext(ctx, query,
		e.ID, e.Actor, e.Action, e.EntityID, e.Before, e.After,
		joinOrNil(e.MergedFields),
	)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

func joinOrNil(fields []string) interface{} {
	if len(fields) == 0 {
		return nil
	}
	return strings.Join(fields, ",")
}
