package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/do/v2"

	assistantimpl "github.com/keghouse/barkeep/external/assistant"
	audioimpl "github.com/keghouse/barkeep/external/audio"
	configloader "github.com/keghouse/barkeep/external/config"
	"github.com/keghouse/barkeep/external/discord"
	repositoryimpl "github.com/keghouse/barkeep/external/repository"
	speechimpl "github.com/keghouse/barkeep/external/speech"
	transcriberimpl "github.com/keghouse/barkeep/external/transcriber"
	webhookimpl "github.com/keghouse/barkeep/external/webhook"
	"github.com/keghouse/barkeep/internal/assistant"
	"github.com/keghouse/barkeep/internal/config"
	discordpkg "github.com/keghouse/barkeep/internal/discord"
	"github.com/keghouse/barkeep/internal/session"
)

const (
	discordConnectTimeout = 20 * time.Second
	assistantSyncTimeout  = 30 * time.Second
)

func main() {
	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env, "transcribe_backend", cfg.TranscribeBackend)

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
	repositoryimpl.RegisterDI(injector)
	audioimpl.RegisterDI(injector)
	discord.RegisterDI(injector)
	assistantimpl.RegisterDI(injector)
	transcriberimpl.RegisterDI(injector)
	speechimpl.RegisterDI(injector)
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
	runs, err := do.Invoke[assistant.RunService](injector)
	if err != nil {
		slog.Error("failed to resolve assistant run service", "error", err)
		os.Exit(1)
	}
	manager, err := do.Invoke[*session.Manager](injector)
	if err != nil {
		slog.Error("failed to resolve session manager", "error", err)
		os.Exit(1)
	}

	syncCtx, cancelSync := context.WithTimeout(context.Background(), assistantSyncTimeout)
	if err := runs.EnsureAssistant(syncCtx, session.AssistantToolDefinitions()); err != nil {
		cancelSync()
		slog.Error("failed to reconcile assistant tool surface", "error", err)
		os.Exit(1)
	}
	cancelSync()

	ctx, cancel := context.WithTimeout(context.Background(), discordConnectTimeout)
	defer cancel()

	slog.Info("startup: connecting to discord gateway")
	if err := dc.Connect(ctx); err != nil {
		slog.Error("discord connect failed", "error", err)
		os.Exit(1)
	}
	slog.Info("startup: discord connected")

	if err := dc.UpsertGuildSlashCommands(cfg.DiscordGuildID, session.SlashCommandDefinitions()); err != nil {
		slog.Error("failed to upsert slash commands", "error", err, "guild_id", cfg.DiscordGuildID)
		os.Exit(1)
	}

	dc.RegisterVoiceStateUpdateHandler(manager.HandleVoiceStateUpdate)
	dc.RegisterSlashCommandHandler(manager.HandleSlashCommand)
	slog.Info("discord handlers registered", "guild_id", cfg.DiscordGuildID)
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
		slog.Info("shutting down; stopping live sessions")
		manager.StopAll()
	case <-done:
	}
}
