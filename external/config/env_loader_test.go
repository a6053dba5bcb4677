package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("DISCORD_GUILD_ID", "guild-1")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("GOOGLE_CREDENTIALS_JSON", `{"type":"service_account"}`)
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Env != "production" || cfg.GeminiModel != "gemini-2.5-flash" {
		t.Fatalf("unexpected defaults: env=%s model=%s", cfg.Env, cfg.GeminiModel)
	}
	if cfg.GoogleSheetName != "Odbiory_Kolonia_Warszawska" || cfg.GoogleWorksheetName != "Arkusz1" || cfg.GoogleDriveRootFolder != "Lokale" {
		t.Fatalf("unexpected workspace defaults: %+v", cfg)
	}
	if cfg.EventTimeout != 60*time.Second || cfg.MaxPhotoBytes != 20<<20 || cfg.LedgerTimezone != "Europe/Warsaw" {
		t.Fatalf("unexpected limits: timeout=%s max=%d tz=%s", cfg.EventTimeout, cfg.MaxPhotoBytes, cfg.LedgerTimezone)
	}
	if cfg.VoiceTranscriptionEnabled() || cfg.ArchiveEnabled() || cfg.SingleReportFallback {
		t.Fatal("optional features must be off by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("INTAKE_EVENT_TIMEOUT", "5s")
	t.Setenv("INTAKE_SINGLE_REPORT_FALLBACK", "true")
	t.Setenv("GOOGLE_CLOUD_PROJECT_ID", "proj")
	t.Setenv("DATABASE_URL", "postgres://localhost/odbiory")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.EventTimeout != 5*time.Second || !cfg.SingleReportFallback || !cfg.VoiceTranscriptionEnabled() || !cfg.ArchiveEnabled() {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DISCORD_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for empty DISCORD_TOKEN")
	}
}

func TestLoad_InvalidTimezone(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LEDGER_TIMEZONE", "Mars/Olympus")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}
