package storage

import (
	"context"
	"fmt"
)

// VerifySchema checks that the tables this service depends on exist.
// Schema creation itself lives in migrations/.
func (db *DB) VerifySchema(ctx context.Context) error {
	tables := []string{"candidates", "dedup_audit_log"}

	for _, table := range tables {
		var exists bool
		query := `
			SELECT EXISTS (
				SELECT FROM information_schema.tables
				WHERE table_schema = 'public'
				AND table_name = $1
			)`
		if err := db.connection.QueryRowContext(ctx, query, table).Scan(&exists); err != nil {
			return fmt.Errorf("verify schema: %w", err)
		}
		if !exists {
			return fmt.Errorf("required table %s does not exist", table)
		}
	}

	return nil
}
