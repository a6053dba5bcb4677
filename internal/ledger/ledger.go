package ledger

import (
	"context"
	"time"
)

type EntryKind string

const (
	EntryKindText  EntryKind = "text"
	EntryKindPhoto EntryKind = "photo"
)

// Record is one committed defect row.
type Record struct {
	HandoverID       string
	Timestamp        time.Time
	UnitID           string
	Defect           string
	ResponsibleParty string
	Kind             EntryKind
	AssetRef         string
}

// Ledger is an append-only sink. Appends are independent; a batch may land partially.
type Ledger interface {
	Append(ctx context.Context, record Record) error
}

// TimeLayout is the timestamp format written into ledger rows.
const TimeLayout = "2006-01-02 15:04:05"
