package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/foxseedlab/usterki/internal/config"
)

type envConfig struct {
	Env                       string        `env:"ENV" envDefault:"production"`
	DiscordToken              string        `env:"DISCORD_TOKEN,required"`
	DiscordGuildID            string        `env:"DISCORD_GUILD_ID,required"`
	GeminiAPIKey              string        `env:"GEMINI_API_KEY,required"`
	GeminiModel               string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	GoogleCredentialsJSON     string        `env:"GOOGLE_CREDENTIALS_JSON,required"`
	GoogleSheetID             string        `env:"GOOGLE_SHEET_ID"`
	GoogleSheetName           string        `env:"GOOGLE_SHEET_NAME" envDefault:"Odbiory_Kolonia_Warszawska"`
	GoogleWorksheetName       string        `env:"GOOGLE_WORKSHEET_NAME" envDefault:"Arkusz1"`
	GoogleDriveRootFolder     string        `env:"GOOGLE_DRIVE_ROOT_FOLDER" envDefault:"Lokale"`
	GoogleDriveCreateUnitDirs bool          `env:"GOOGLE_DRIVE_CREATE_UNIT_FOLDERS" envDefault:"false"`
	DatabaseURL               string        `env:"DATABASE_URL"`
	GoogleCloudProjectID      string        `env:"GOOGLE_CLOUD_PROJECT_ID"`
	GoogleCloudSpeechLocation string        `env:"GOOGLE_CLOUD_SPEECH_LOCATION" envDefault:"eu"`
	GoogleCloudSpeechModel    string        `env:"GOOGLE_CLOUD_SPEECH_MODEL" envDefault:"chirp_3"`
	TranscribeLanguage        string        `env:"TRANSCRIBE_LANGUAGE" envDefault:"pl-PL"`
	LedgerTimezone            string        `env:"LEDGER_TIMEZONE" envDefault:"Europe/Warsaw"`
	EventTimeout              time.Duration `env:"INTAKE_EVENT_TIMEOUT" envDefault:"60s"`
	SingleReportFallback      bool          `env:"INTAKE_SINGLE_REPORT_FALLBACK" envDefault:"false"`
	HandoverWebhookURL        string        `env:"HANDOVER_WEBHOOK_URL"`
	MaxPhotoBytes             int64         `env:"MAX_PHOTO_BYTES" envDefault:"20971520"`
}

func Load() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                       raw.Env,
		DiscordToken:              raw.DiscordToken,
		DiscordGuildID:            raw.DiscordGuildID,
		GeminiAPIKey:              raw.GeminiAPIKey,
		GeminiModel:               raw.GeminiModel,
		GoogleCredentialsJSON:     raw.GoogleCredentialsJSON,
		GoogleSheetID:             raw.GoogleSheetID,
		GoogleSheetName:           raw.GoogleSheetName,
		GoogleWorksheetName:       raw.GoogleWorksheetName,
		GoogleDriveRootFolder:     raw.GoogleDriveRootFolder,
		GoogleDriveCreateUnitDirs: raw.GoogleDriveCreateUnitDirs,
		DatabaseURL:               raw.DatabaseURL,
		GoogleCloudProjectID:      raw.GoogleCloudProjectID,
		GoogleCloudSpeechLocation: raw.GoogleCloudSpeechLocation,
		GoogleCloudSpeechModel:    raw.GoogleCloudSpeechModel,
		TranscribeLanguage:        raw.TranscribeLanguage,
		LedgerTimezone:            raw.LedgerTimezone,
		EventTimeout:              raw.EventTimeout,
		SingleReportFallback:      raw.SingleReportFallback,
		HandoverWebhookURL:        raw.HandoverWebhookURL,
		MaxPhotoBytes:             raw.MaxPhotoBytes,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
