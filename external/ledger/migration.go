package ledger

import (
	"context"
	"strings"
)

var migrationStatements = []string{
	`DO $$ BEGIN CREATE TYPE defect_kind AS ENUM ('text', 'photo'); EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`CREATE TABLE IF NOT EXISTS handover_defects (
		id BIGSERIAL PRIMARY KEY,
		handover_id TEXT,
		recorded_at TIMESTAMPTZ NOT NULL,
		unit_id TEXT NOT NULL,
		defect TEXT NOT NULL,
		responsible_party TEXT NOT NULL,
		kind defect_kind NOT NULL DEFAULT 'text',
		asset_ref TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_handover_defects_handover ON handover_defects (handover_id)`,
	`CREATE INDEX IF NOT EXISTS idx_handover_defects_unit ON handover_defects (unit_id, recorded_at)`,
}

func RunMigration(ctx context.Context, db execer) error {
	for _, s := range migrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
