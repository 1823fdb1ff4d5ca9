package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

// Tables the audit log depends on, in creation order.
var tables = []struct {
	name string
	ddl  string
}{
	{
		name: "hostel_decisions",
		ddl: `
			CREATE TABLE IF NOT EXISTS hostel_decisions (
				id          UUID PRIMARY KEY,
				student_id  TEXT NOT NULL,
				action      TEXT NOT NULL CHECK (action IN ('approve', 'reject')),
				succeeded   BOOLEAN NOT NULL,
				error       TEXT NOT NULL DEFAULT '',
				decided_at  TIMESTAMPTZ NOT NULL
			)`,
	},
	{
		name: "hostel_decisions_decided_at_idx",
		ddl:  `CREATE INDEX IF NOT EXISTS hostel_decisions_decided_at_idx ON hostel_decisions (decided_at DESC)`,
	},
}

// InitSchema creates any missing audit tables and then verifies they exist.
func InitSchema(ctx context.Context, db *sql.DB) error {
	for _, t := range tables {
		if _, err := db.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("creating %s: %w", t.name, err)
		}
	}

	var exists bool
	query := `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)`
	if err := db.QueryRowContext(ctx, query, "hostel_decisions").Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("required table hostel_decisions does not exist")
	}
	return nil
}
