package ledger

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/foxseedlab/usterki/internal/ledger"
	"github.com/jackc/pgx/v5/pgconn"
)

type execCall struct {
	sql  string
	args []any
}

type mockExecer struct {
	calls []execCall
	err   error
}

func (m *mockExecer) Exec(_ context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	m.calls = append(m.calls, execCall{sql: sql, args: arguments})
	if m.err != nil {
		return pgconn.CommandTag{}, m.err
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func TestPostgresArchive_Append(t *testing.T) {
	db := &mockExecer{}
	archive := NewPostgresArchive(db)
	ts := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

	err := archive.Append(context.Background(), ledger.Record{
		HandoverID:       "01JABC",
		Timestamp:        ts,
		UnitID:           "46.2",
		Defect:           "rysa (zdjęcie)",
		ResponsibleParty: "Acme",
		Kind:             ledger.EntryKindPhoto,
		AssetRef:         "file-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(db.calls) != 1 || !strings.Contains(db.calls[0].sql, "INSERT INTO handover_defects") {
		t.Fatalf("unexpected calls: %+v", db.calls)
	}
	args := db.calls[0].args
	if *(args[0].(*string)) != "01JABC" || args[1].(time.Time) != ts || args[5] != "photo" || *(args[6].(*string)) != "file-1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestPostgresArchive_AppendSingleReportUsesNulls(t *testing.T) {
	db := &mockExecer{}
	if err := NewPostgresArchive(db).Append(context.Background(), ledger.Record{UnitID: "3"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	args := db.calls[0].args
	if args[0].(*string) != nil || args[6].(*string) != nil {
		t.Fatalf("expected NULL handover id and asset ref, got %+v", args)
	}
	if args[5] != "text" {
		t.Fatalf("expected default kind text, got %v", args[5])
	}
}

func TestPostgresArchive_AppendError(t *testing.T) {
	db := &mockExecer{err: errors.New("connection reset")}
	if err := NewPostgresArchive(db).Append(context.Background(), ledger.Record{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestRunMigration(t *testing.T) {
	db := &mockExecer{}
	if err := RunMigration(context.Background(), db); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(db.calls) != len(migrationStatements) {
		t.Fatalf("expected %d statements, got %d", len(migrationStatements), len(db.calls))
	}

	failing := &mockExecer{err: errors.New("permission denied")}
	if err := RunMigration(context.Background(), failing); err == nil {
		t.Fatal("expected migration error")
	}
	if len(failing.calls) != 1 {
		t.Fatalf("expected migration to stop at first failure, got %d calls", len(failing.calls))
	}
}
