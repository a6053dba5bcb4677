package config

import (
	"fmt"
	"time"
)

type Config struct {
	Env                       string
	DiscordToken              string
	DiscordGuildID            string
	GeminiAPIKey              string
	GeminiModel               string
	GoogleCredentialsJSON     string
	GoogleSheetID             string
	GoogleSheetName           string
	GoogleWorksheetName       string
	GoogleDriveRootFolder     string
	GoogleDriveCreateUnitDirs bool
	DatabaseURL               string
	GoogleCloudProjectID      string
	GoogleCloudSpeechLocation string
	GoogleCloudSpeechModel    string
	TranscribeLanguage        string
	LedgerTimezone            string
	EventTimeout              time.Duration
	SingleReportFallback      bool
	HandoverWebhookURL        string
	MaxPhotoBytes             int64
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if c.GoogleSheetID == "" && c.GoogleSheetName == "" {
		return fmt.Errorf("GOOGLE_SHEET_ID or GOOGLE_SHEET_NAME is required")
	}
	if c.EventTimeout <= 0 {
		return fmt.Errorf("INTAKE_EVENT_TIMEOUT must be positive, got %s", c.EventTimeout)
	}
	if c.MaxPhotoBytes <= 0 {
		return fmt.Errorf("MAX_PHOTO_BYTES must be positive, got %d", c.MaxPhotoBytes)
	}
	if c.VoiceTranscriptionEnabled() && c.TranscribeLanguage == "" {
		return fmt.Errorf("TRANSCRIBE_LANGUAGE is required when GOOGLE_CLOUD_PROJECT_ID is set")
	}
	if _, err := time.LoadLocation(c.LedgerTimezone); err != nil {
		return fmt.Errorf("LEDGER_TIMEZONE is invalid: %w", err)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "DISCORD_TOKEN", value: c.DiscordToken},
		{name: "DISCORD_GUILD_ID", value: c.DiscordGuildID},
		{name: "GEMINI_API_KEY", value: c.GeminiAPIKey},
		{name: "GEMINI_MODEL", value: c.GeminiModel},
		{name: "GOOGLE_CREDENTIALS_JSON", value: c.GoogleCredentialsJSON},
		{name: "GOOGLE_WORKSHEET_NAME", value: c.GoogleWorksheetName},
		{name: "GOOGLE_DRIVE_ROOT_FOLDER", value: c.GoogleDriveRootFolder},
		{name: "LEDGER_TIMEZONE", value: c.LedgerTimezone},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// VoiceTranscriptionEnabled reports whether voice notes are routed to Cloud Speech.
func (c *Config) VoiceTranscriptionEnabled() bool {
	return c.GoogleCloudProjectID != ""
}

// ArchiveEnabled reports whether committed rows are mirrored into PostgreSQL.
func (c *Config) ArchiveEnabled() bool {
	return c.DatabaseURL != ""
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.LedgerTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
