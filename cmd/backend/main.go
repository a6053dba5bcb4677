package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	assetimpl "github.com/foxseedlab/usterki/external/asset"
	configloader "github.com/foxseedlab/usterki/external/config"
	"github.com/foxseedlab/usterki/external/discord"
	extractorimpl "github.com/foxseedlab/usterki/external/extractor"
	"github.com/foxseedlab/usterki/external/google"
	ledgerimpl "github.com/foxseedlab/usterki/external/ledger"
	transcriberimpl "github.com/foxseedlab/usterki/external/transcriber"
	webhookimpl "github.com/foxseedlab/usterki/external/webhook"
	"github.com/foxseedlab/usterki/internal/config"
	discordpkg "github.com/foxseedlab/usterki/internal/discord"
	"github.com/foxseedlab/usterki/internal/session"
	"github.com/samber/do/v2"
)

const discordConnectTimeout = 20 * time.Second

func main() {
	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env, "voice_transcription", cfg.VoiceTranscriptionEnabled(), "archive", cfg.ArchiveEnabled())

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg)

	slog.Info("startup: launching discord bot")
	runBot(cfg, injector)
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	google.RegisterDI(injector)
	ledgerimpl.RegisterDI(injector)
	assetimpl.RegisterDI(injector)
	extractorimpl.RegisterDI(injector)
	discord.RegisterDI(injector)
	if cfg.VoiceTranscriptionEnabled() {
		transcriberimpl.RegisterDI(injector)
	}
	webhookimpl.RegisterDI(injector)
	session.RegisterDI(injector)

	return injector
}

func runBot(cfg *config.Config, injector do.Injector) {
	dc, err := do.Invoke[discordpkg.Client](injector)
	if err != nil {
		slog.Error("failed to resolve discord client", "error", err)
		os.Exit(1)
	}
	// Resolving the manager opens the spreadsheet and the Drive root folder.
	manager, err := do.Invoke[*session.Manager](injector)
	if err != nil {
		slog.Error("failed to resolve session manager", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), discordConnectTimeout)
	defer cancel()

	slog.Info("startup: connecting to discord gateway")
	if err := dc.Connect(ctx); err != nil {
		slog.Error("discord connect failed", "error", err)
		os.Exit(1)
	}
	slog.Info("startup: discord connected")

	botUserID, err := dc.GetBotUserID()
	if err != nil {
		slog.Error("failed to resolve bot user id", "error", err)
		os.Exit(1)
	}
	manager.SetBotUserID(botUserID)

	if err := dc.UpsertGuildSlashCommands(cfg.DiscordGuildID, session.SlashCommandDefinitions()); err != nil {
		slog.Error("failed to upsert slash commands", "error", err, "guild_id", cfg.DiscordGuildID)
		os.Exit(1)
	}

	dc.RegisterMessageHandler(manager.HandleMessage)
	dc.RegisterSlashCommandHandler(manager.HandleSlashCommand)
	slog.Info("discord handlers registered", "guild_id", cfg.DiscordGuildID, "bot_user_id", botUserID)
	defer func() {
		if err := dc.Close(); err != nil {
			slog.Error("discord close failed", "error", err)
		}
	}()

	done := make(chan struct{})
	go func() {
		slog.Info("startup: entering discord run loop")
		if err := dc.Run(); err != nil {
			slog.Error("discord run failed", "error", err)
		}
		close(done)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		slog.Info("shutting down")
	case <-done:
	}

	active, pending := manager.DropAllSessions()
	if active > 0 {
		slog.Warn("shutdown discarded active handovers", "sessions", active, "entries", pending)
	}
}
