package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/foxseedlab/usterki/external/google"
	"github.com/foxseedlab/usterki/internal/config"
	"github.com/foxseedlab/usterki/internal/ledger"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/do/v2"
)

const ledgerInitTimeout = 15 * time.Second

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (ledger.Ledger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		svc := do.MustInvoke[*google.Services](i)
		ctx, cancel := context.WithTimeout(context.Background(), ledgerInitTimeout)
		defer cancel()

		primary, err := NewSheetsLedger(ctx, svc.Sheets, svc.Drive, SheetsConfig{
			SpreadsheetID:   cfg.GoogleSheetID,
			SpreadsheetName: cfg.GoogleSheetName,
			WorksheetName:   cfg.GoogleWorksheetName,
			Location:        cfg.Location(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open sheets ledger: %w", err)
		}
		if !cfg.ArchiveEnabled() {
			return NewFanoutLedger(primary), nil
		}

		archive, err := connectArchive(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return NewFanoutLedger(primary, archive), nil
	})
}

func connectArchive(ctx context.Context, databaseURL string) (*PostgresArchive, error) {
	p, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := RunMigration(ctx, p); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to run migration: %w", err)
	}
	return NewPostgresArchive(p), nil
}
