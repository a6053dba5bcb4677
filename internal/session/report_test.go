package session

import (
	"testing"
	"time"

	"github.com/foxseedlab/usterki/internal/webhook"
)

func TestBuildHandoverReport(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)
	h := Handover{
		HandoverID:       "01JABCDEF",
		UnitID:           "46.2",
		ResponsibleParty: "Acme",
		StartedAt:        time.Date(2026, 10, 14, 7, 0, 0, 0, time.UTC),
		Entries: []Entry{
			{Description: "kran", Kind: EntryKindText},
			{Description: "rysa (zdjęcie)", Kind: EntryKindPhoto, AssetRef: "file-1"},
		},
	}
	results := []commitResult{
		{entry: h.Entries[0], committed: true},
		{entry: h.Entries[1]},
	}

	got := buildHandoverReport("guild-1", "chan-1", h, time.Date(2026, 10, 14, 8, 15, 0, 0, time.UTC), "Europe/Warsaw", loc, results)

	if got.SchemaVersion != webhook.HandoverReportSchemaVersion {
		t.Fatalf("unexpected schema version: %s", got.SchemaVersion)
	}
	if got.HandoverID != "01JABCDEF" || got.DiscordServerID != "guild-1" || got.DiscordChannelID != "chan-1" {
		t.Fatalf("unexpected identifiers: %+v", got)
	}
	if got.StartAt != "2026-10-14T09:00:00+02:00" || got.EndAt != "2026-10-14T10:15:00+02:00" {
		t.Fatalf("unexpected times: start=%s end=%s", got.StartAt, got.EndAt)
	}
	if got.Total != 2 || got.Committed != 1 {
		t.Fatalf("unexpected counts: total=%d committed=%d", got.Total, got.Committed)
	}
	if !got.Entries[0].Committed || got.Entries[1].Committed || got.Entries[1].AssetRef != "file-1" || got.Entries[1].Kind != "photo" {
		t.Fatalf("unexpected entries: %+v", got.Entries)
	}
}

func TestBuildHandoverReport_NilLocationUsesUTC(t *testing.T) {
	h := Handover{StartedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), Entries: []Entry{}}
	got := buildHandoverReport("g", "c", h, h.StartedAt, "UTC", nil, nil)
	if got.StartAt != "2026-01-02T03:04:05Z" {
		t.Fatalf("unexpected start: %s", got.StartAt)
	}
	if got.Entries == nil || len(got.Entries) != 0 || got.Total != 0 {
		t.Fatalf("expected empty non-nil entries, got %+v", got.Entries)
	}
}
