// Command homebot runs the home-server Telegram bot: torrent control,
// tracker search, speed limits, service health, and host info, all over
// a chat interface guarded by a chat-ID allow-list.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ndrozd/homebot/internal/bot"
	"github.com/ndrozd/homebot/internal/clients/jackett"
	"github.com/ndrozd/homebot/internal/clients/qbittorrent"
	"github.com/ndrozd/homebot/internal/clients/torrserver"
	"github.com/ndrozd/homebot/internal/config"
	"github.com/ndrozd/homebot/internal/observability"
	"github.com/ndrozd/homebot/internal/registry"
	"github.com/ndrozd/homebot/internal/sysinfo"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is a developer convenience; in production the environment is
	// set by the service manager and the file is absent.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	logger := newLogger(cfg)

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram authorization failed")
	}
	logger.Info().Str("username", api.Self.UserName).Msg("authorized on telegram")

	store := registry.NewStore(registry.DefaultTTL)
	observability.SetRegistrySource(store.Len)

	qb := qbittorrent.New(cfg.QBittorrent.URL, cfg.QBittorrent.Username, cfg.QBittorrent.Password, cfg.QBittorrent.Timeout)
	idx := jackett.New(cfg.Jackett.URL, cfg.Jackett.APIKey, cfg.Jackett.Timeout)
	media := torrserver.New(cfg.TorrServer.URL, cfg.TorrServer.Timeout)
	system := sysinfo.New()

	b := bot.New(api, cfg, store, qb, idx, media, system, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var ops *observability.OpsServer
	if cfg.OpsAddr != "" {
		ops = observability.NewOpsServer(cfg.OpsAddr, logger)
		ops.Start()
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)

	if err := b.Run(ctx, updates); err != nil && ctx.Err() == nil {
		logger.Error().Err(err).Msg("update loop terminated")
	}

	logger.Info().Msg("shutting down")
	api.StopReceivingUpdates()
	if ops != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := ops.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("ops server shutdown failed")
		}
	}
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.LogPretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}
