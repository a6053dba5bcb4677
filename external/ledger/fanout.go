package ledger

import (
	"context"
	"log/slog"

	"github.com/foxseedlab/usterki/internal/ledger"
)

// FanoutLedger writes to the primary ledger and copies committed rows to the
// mirrors. Only the primary decides whether a row counts as committed.
type FanoutLedger struct {
	primary ledger.Ledger
	mirrors []ledger.Ledger
}

func NewFanoutLedger(primary ledger.Ledger, mirrors ...ledger.Ledger) *FanoutLedger {
	return &FanoutLedger{primary: primary, mirrors: mirrors}
}

func (f *FanoutLedger) Append(ctx context.Context, record ledger.Record) error {
	if err := f.primary.Append(ctx, record); err != nil {
		return err
	}
	for _, m := range f.mirrors {
		if err := m.Append(ctx, record); err != nil {
			slog.Warn("failed to mirror ledger row", "error", err, "handover_id", record.HandoverID, "unit_id", record.UnitID)
		}
	}
	return nil
}
