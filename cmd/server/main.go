// Mediagram - Plex to Chat Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediagram

// Command server runs the relay: it receives Plex webhooks, caches
// thumbnails, and pushes new-content notifications to the configured chat
// channels.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/mediagram/internal/api"
	"github.com/tomtom215/mediagram/internal/config"
	"github.com/tomtom215/mediagram/internal/dedup"
	"github.com/tomtom215/mediagram/internal/imagecache"
	"github.com/tomtom215/mediagram/internal/logging"
	"github.com/tomtom215/mediagram/internal/notify"
	"github.com/tomtom215/mediagram/internal/report"
	"github.com/tomtom215/mediagram/internal/store"
	"github.com/tomtom215/mediagram/internal/thumb"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Service failed")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	api.Version = version

	logging.Info().
		Str("version", version).
		Int("port", cfg.Server.Port).
		Msg("Starting mediagram")

	reporter, err := report.Init(&cfg.Sentry, version)
	if err != nil {
		// Error tracking is optional; a bad DSN must not keep
		// notifications from flowing.
		logging.Warn().Err(err).Msg("Error tracking disabled")
	}
	defer reporter.Close()

	st, err := store.Open(&cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Store close failed")
		}
	}()

	cache := imagecache.New(st, cfg.Cache.ImageTTL)
	resolver := thumb.New(cache, cfg)
	gate := dedup.New(st, &cfg.Dedup)

	channels, err := buildChannels(cfg)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(channels))
	for _, ch := range channels {
		names = append(names, ch.Name())
	}
	if len(channels) == 0 {
		logging.Warn().Msg("No notification channels configured, webhooks will be acknowledged but not delivered")
	}

	dispatcher := notify.NewDispatcher(channels, gate, reporter)
	defer dispatcher.Close()

	handler := api.NewHandler(cfg, st, cache, resolver, dispatcher, reporter, names)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.Router(&cfg.Server, handler),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logging.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// buildChannels constructs the enabled chat channels. Telegram init talks
// to the Bot API and fails hard on a bad token; better at startup than on
// the first notification.
func buildChannels(cfg *config.Config) ([]notify.Channel, error) {
	var channels []notify.Channel

	if cfg.Telegram.Enabled {
		tg, err := notify.NewTelegram(&cfg.Telegram)
		if err != nil {
			return nil, fmt.Errorf("telegram channel: %w", err)
		}
		channels = append(channels, tg)
		logging.Info().Int64("chat_id", cfg.Telegram.ChatID).Msg("Telegram channel enabled")
	}

	if cfg.Discord.Enabled {
		channels = append(channels, notify.NewDiscord(&cfg.Discord))
		logging.Info().Msg("Discord channel enabled")
	}

	return channels, nil
}
