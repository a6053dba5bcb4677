package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/foxseedlab/usterki/internal/webhook"
)

func testPayload() webhook.HandoverReportPayload {
	return webhook.HandoverReportPayload{
		SchemaVersion:    webhook.HandoverReportSchemaVersion,
		HandoverID:       "01JABCDEF",
		DiscordServerID:  "guild-1",
		DiscordChannelID: "chan-1",
		UnitID:           "46.2",
		ResponsibleParty: "Acme",
		Timezone:         "Europe/Warsaw",
		Total:            1,
		Committed:        1,
		Entries: []webhook.HandoverReportEntry{
			{Description: "rysa (zdjęcie)", Kind: "photo", AssetRef: "file-1", Committed: true},
		},
	}
}

func TestSendHandoverReport_EmptyWebhookURL(t *testing.T) {
	sender := NewHTTPSender("")
	if err := sender.SendHandoverReport(context.Background(), testPayload()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestSendHandoverReport_Success(t *testing.T) {
	var got map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("unexpected content type: %s", ct)
		}
		if v := r.Header.Get("X-Handover-Schema-Version"); v != webhook.HandoverReportSchemaVersion {
			t.Fatalf("unexpected schema version header: %s", v)
		}
		if k := r.Header.Get("Idempotency-Key"); k != "01JABCDEF" {
			t.Fatalf("unexpected idempotency key: %s", k)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL)
	if err := sender.SendHandoverReport(context.Background(), testPayload()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got["handover_id"] != "01JABCDEF" || got["unit_id"] != "46.2" || got["schema_version"] != webhook.HandoverReportSchemaVersion {
		t.Fatalf("unexpected payload: %v", got)
	}
	entries, ok := got["entries"].([]any)
	if !ok || len(entries) != 1 {
		t.Fatalf("unexpected entries: %v", got["entries"])
	}
	entry := entries[0].(map[string]any)
	if entry["asset_ref"] != "file-1" || entry["committed"] != true {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestSendHandoverReport_Non2xxIsNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("unknown unit"))
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL)
	err := sender.SendHandoverReport(context.Background(), testPayload())
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if !strings.Contains(err.Error(), "01JABCDEF") || !strings.Contains(err.Error(), "unknown unit") {
		t.Fatalf("expected handover id and body in error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestSendHandoverReport_RetriesServerErrorWithSameKey(t *testing.T) {
	var keys []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get("Idempotency-Key"))
		if len(keys) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL).(*HTTPSender)
	sender.retryDelay = 0
	if err := sender.SendHandoverReport(context.Background(), testPayload()); err != nil {
		t.Fatalf("expected nil error after retry, got %v", err)
	}
	if len(keys) != 2 || keys[0] != "01JABCDEF" || keys[1] != keys[0] {
		t.Fatalf("expected two attempts with the same key, got %v", keys)
	}
}

func TestSendHandoverReport_FillsMissingSchemaVersion(t *testing.T) {
	var header, body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("X-Handover-Schema-Version")
		var got map[string]any
		_ = json.NewDecoder(r.Body).Decode(&got)
		body, _ = got["schema_version"].(string)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	payload := testPayload()
	payload.SchemaVersion = ""
	if err := NewHTTPSender(server.URL).SendHandoverReport(context.Background(), payload); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if header != webhook.HandoverReportSchemaVersion || body != webhook.HandoverReportSchemaVersion {
		t.Fatalf("expected default schema version, got header=%q body=%q", header, body)
	}
}
