// Package migrations applies the layout engine schema. Statements are
// idempotent and run in order on every startup.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS layout_skeletons (
		id          UUID PRIMARY KEY,
		name        TEXT NOT NULL,
		type        TEXT NOT NULL,
		scope       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		layout_json JSONB NOT NULL DEFAULT '{"components": [], "version": 1}',
		is_active   BOOLEAN NOT NULL DEFAULT FALSE,
		is_locked   BOOLEAN NOT NULL DEFAULT FALSE,
		version     INTEGER NOT NULL DEFAULT 1,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	// One active layout per slot, enforced by the database.
	`CREATE UNIQUE INDEX IF NOT EXISTS layout_skeletons_active_slot
		ON layout_skeletons (type, scope) WHERE is_active`,

	`CREATE INDEX IF NOT EXISTS layout_skeletons_slot
		ON layout_skeletons (type, scope)`,

	`CREATE INDEX IF NOT EXISTS layout_skeletons_created_at
		ON layout_skeletons (created_at)`,
}

// Apply executes every schema statement against the database.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
