package ledger

import (
	"context"
	"fmt"

	"github.com/foxseedlab/usterki/internal/ledger"
	"github.com/jackc/pgx/v5/pgconn"
)

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresArchive mirrors committed rows into handover_defects for reporting.
type PostgresArchive struct {
	db execer
}

func NewPostgresArchive(db execer) *PostgresArchive {
	return &PostgresArchive{db: db}
}

func (a *PostgresArchive) Append(ctx context.Context, record ledger.Record) error {
	kind := record.Kind
	if kind == "" {
		kind = ledger.EntryKindText
	}
	_, err := a.db.Exec(ctx,
		`INSERT INTO handover_defects (handover_id, recorded_at, unit_id, defect, responsible_party, kind, asset_ref)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		nullIfEmpty(record.HandoverID), record.Timestamp, record.UnitID, record.Defect, record.ResponsibleParty, string(kind), nullIfEmpty(record.AssetRef))
	if err != nil {
		return fmt.Errorf("insert handover defect: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
