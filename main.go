package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"

	"github.com/whisprbot/whispr/whispr"
	"github.com/whisprbot/whispr/whispr/commands"
	"github.com/whisprbot/whispr/whispr/components"
	"github.com/whisprbot/whispr/whispr/config"
	"github.com/whisprbot/whispr/whispr/confession"
	"github.com/whisprbot/whispr/whispr/disambig"
	"github.com/whisprbot/whispr/whispr/handlers"
	"github.com/whisprbot/whispr/whispr/logger"
	"github.com/whisprbot/whispr/whispr/storage"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	customHandler := logger.NewHandler()
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting Whispr",
		slog.String("version", version),
		slog.String("commit", commit))

	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := whispr.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Configuration loaded successfully")

	store, err := storage.Open(cfg.Storage.Dir)
	if err != nil {
		slog.Error("Failed to open storage",
			slog.String("type", "store"),
			slog.Any("error", err))
		os.Exit(-1)
	}

	b := whispr.New(*cfg, version, commit)
	b.Store = store
	b.Disambig = disambig.NewManager(config.SelectTimeout, config.MaxGuildChoices)

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	b.Disambig.StartCleanupRoutine(cleanupCtx, config.SessionCleanupInterval)

	h := handler.New()
	h.Command("/setup", handlers.WrapWithLogging("setup", commands.SetupHandler(b)))
	h.Command("/help", handlers.WrapWithLogging("help", commands.HelpHandler(b)))
	h.Command("/version", commands.VersionHandler(b))
	h.Command("/confessions", handlers.WrapWithLogging("confessions", commands.ConfessionsHandler(b)))
	h.Component("/confess-target/{session}", handlers.WrapComponentWithLogging("confess-target", components.ConfessTargetHandler(b)))

	if err = b.SetupBot(h, bot.NewListenerFunc(b.OnReady), bot.NewListenerFunc(b.OnGuildJoin), handlers.MessageHandler(b)); err != nil {
		slog.Error("Failed to setup bot",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("error_details", fmt.Sprintf("%+v", err)),
		)
		os.Exit(-1)
	}

	b.Confessions = confession.NewService(
		store,
		confession.NewLimiter(config.ConfessionCooldown),
		confession.NewDiscordPlatform(b.Client),
	)

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Client.Close(ctx)
	}()

	if *shouldSyncCommands {
		slog.Info("Syncing commands",
			slog.String("type", "sys"),
			slog.Any("guild_ids", cfg.Bot.DevGuilds),
		)
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands",
				slog.String("type", "sys"),
				slog.Any("error", err),
			)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = b.Client.OpenGateway(ctx); err != nil {
		slog.Error("Failed to open gateway",
			slog.String("type", "sys"),
			slog.Any("error", err),
		)
		os.Exit(-1)
	}

	slog.Info("Whispr is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	slog.Info("Shutting down bot...")
}
