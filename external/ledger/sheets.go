package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/foxseedlab/usterki/external/google"
	"github.com/foxseedlab/usterki/internal/ledger"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"
)

const (
	spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"
	valueInputOption    = "USER_ENTERED"
	insertDataOption    = "INSERT_ROWS"
)

var (
	ErrSpreadsheetNotFound = errors.New("spreadsheet not found")
	ErrWorksheetNotFound   = errors.New("worksheet not found")
)

type SheetsConfig struct {
	SpreadsheetID   string
	SpreadsheetName string
	WorksheetName   string
	Location        *time.Location
}

// SheetsLedger appends one row per record: timestamp, unit, defect, responsible party.
type SheetsLedger struct {
	svc           *sheets.Service
	spreadsheetID string
	worksheet     string
	loc           *time.Location
}

// NewSheetsLedger resolves the spreadsheet (by title through Drive when no id is
// configured) and checks that the worksheet exists.
func NewSheetsLedger(ctx context.Context, svc *sheets.Service, drv *drive.Service, cfg SheetsConfig) (*SheetsLedger, error) {
	id := cfg.SpreadsheetID
	if id == "" {
		resolved, err := findSpreadsheet(ctx, drv, cfg.SpreadsheetName)
		if err != nil {
			return nil, err
		}
		id = resolved
	}
	ss, err := svc.Spreadsheets.Get(id).Fields("spreadsheetId", "sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet %s: %w", id, err)
	}
	found := false
	for _, sh := range ss.Sheets {
		if sh != nil && sh.Properties != nil && sh.Properties.Title == cfg.WorksheetName {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %q in spreadsheet %s", ErrWorksheetNotFound, cfg.WorksheetName, id)
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	slog.Info("sheets ledger ready", "spreadsheet_id", id, "worksheet", cfg.WorksheetName)
	return &SheetsLedger{svc: svc, spreadsheetID: id, worksheet: cfg.WorksheetName, loc: loc}, nil
}

func findSpreadsheet(ctx context.Context, drv *drive.Service, name string) (string, error) {
	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", google.EscapeQuery(name), spreadsheetMimeType)
	resp, err := drv.Files.List().Q(q).Fields("files(id, name)").PageSize(1).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("look up spreadsheet %q: %w", name, err)
	}
	if len(resp.Files) == 0 {
		return "", fmt.Errorf("%w: %q", ErrSpreadsheetNotFound, name)
	}
	return resp.Files[0].Id, nil
}

func (l *SheetsLedger) Append(ctx context.Context, record ledger.Record) error {
	row := []any{
		record.Timestamp.In(l.loc).Format(ledger.TimeLayout),
		record.UnitID,
		record.Defect,
		record.ResponsibleParty,
	}
	_, err := l.svc.Spreadsheets.Values.Append(l.spreadsheetID, l.appendRange(), &sheets.ValueRange{
		Values: [][]any{row},
	}).
		ValueInputOption(valueInputOption).
		InsertDataOption(insertDataOption).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append row to sheets: %w", err)
	}
	slog.Info("row appended to sheets", "handover_id", record.HandoverID, "unit_id", record.UnitID, "kind", record.Kind)
	return nil
}

func (l *SheetsLedger) appendRange() string {
	return fmt.Sprintf("'%s'!A:D", strings.ReplaceAll(l.worksheet, "'", "''"))
}
