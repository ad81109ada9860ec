// Mediagram - Plex to Chat Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediagram

// Package config provides layered configuration for Mediagram.
//
// Configuration is loaded in three layers with clear precedence:
//
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML file
//  3. Environment variables: override any setting
//
// All components receive the resulting *Config explicitly; there is no
// ambient global configuration state.
package config

import "time"

// Config is the root configuration struct passed to every component at
// process start.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Store    StoreConfig    `koanf:"store"`
	Plex     PlexConfig     `koanf:"plex"`
	Cache    CacheConfig    `koanf:"cache"`
	Dedup    DedupConfig    `koanf:"dedup"`
	Format   FormatConfig   `koanf:"format"`
	Telegram TelegramConfig `koanf:"telegram"`
	Discord  DiscordConfig  `koanf:"discord"`
	Sentry   SentryConfig   `koanf:"sentry"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// PublicURL is the externally reachable base URL of this service.
	// It is used to build the image references handed to chat channels
	// that fetch photos by URL (e.g. Telegram). No trailing slash.
	PublicURL string `koanf:"public_url"`

	// RateLimitReqs/RateLimitWindow bound per-IP request rates on the
	// public endpoints.
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// StoreConfig holds settings for the shared Badger key-value store that
// backs both the image cache and the suppression markers.
type StoreConfig struct {
	Path string `koanf:"path"`

	// InMemory runs Badger without disk persistence. Cached thumbnails
	// and suppression markers are lost on restart; both rebuild
	// passively, so this is acceptable for small deployments and tests.
	InMemory bool `koanf:"in_memory"`
}

// PlexConfig holds the upstream Plex media server connection used for
// thumbnail fetches.
type PlexConfig struct {
	// URL is the base URL of the Plex server (e.g. https://plex.example.org).
	URL string `koanf:"url" validate:"omitempty,url"`

	// Token is the X-Plex-Token appended to thumbnail fetch requests.
	Token string `koanf:"token"`

	// WebURL is the base of the Plex web app used for deep links in
	// notifications (default: https://app.plex.tv).
	WebURL string `koanf:"web_url"`
}

// CacheConfig holds image cache settings.
type CacheConfig struct {
	// ImageTTL is how long a cached thumbnail lives after its last write.
	ImageTTL time.Duration `koanf:"image_ttl" validate:"gt=0"`

	// JPEGQuality is the encoder quality for normalized thumbnails.
	JPEGQuality int `koanf:"jpeg_quality" validate:"min=1,max=100"`

	// ResizeWidth/ResizeHeight bound thumbnail dimensions. Zero disables
	// resizing; normalized images keep their source dimensions. Disabled
	// by default.
	ResizeWidth  int `koanf:"resize_width" validate:"min=0"`
	ResizeHeight int `koanf:"resize_height" validate:"min=0"`
}

// DedupKeyMode selects how suppression keys are derived.
type DedupKeyMode string

const (
	// DedupKeySlug derives suppression keys from the item's best slug,
	// falling back to the formatted title when no slug exists.
	DedupKeySlug DedupKeyMode = "slug"

	// DedupKeyTitle derives suppression keys from the formatted title
	// only. This matches older deployments that predate Plex slugs.
	DedupKeyTitle DedupKeyMode = "title"
)

// DedupConfig holds notification deduplication settings.
type DedupConfig struct {
	// Cooldown is the suppression window for repeat notifications of the
	// same logical item. Deployments run this between 15 and 20 minutes.
	Cooldown time.Duration `koanf:"cooldown" validate:"gt=0"`

	KeyMode DedupKeyMode `koanf:"key_mode" validate:"oneof=slug title"`
}

// RatingStyle selects how rating values are rendered in notifications.
type RatingStyle string

const (
	// RatingRaw renders the numeric rating as-is (e.g. "7.8").
	RatingRaw RatingStyle = "raw"

	// RatingStars renders whole stars from the 0-10 rating (rating / 2,
	// truncated).
	RatingStars RatingStyle = "stars"

	// RatingHalfStars renders stars with half-star precision.
	RatingHalfStars RatingStyle = "half-stars"
)

// FormatConfig holds notification text formatting settings.
type FormatConfig struct {
	// LibraryFallback is the library line label when the event carries no
	// library section title.
	LibraryFallback string `koanf:"library_fallback"`

	// SubtitleSource selects the movie subtitle source: summary or tagline.
	SubtitleSource string `koanf:"subtitle_source" validate:"oneof=summary tagline"`

	RatingStyle RatingStyle `koanf:"rating_style" validate:"oneof=raw stars half-stars"`
}

// TelegramConfig holds the Telegram channel settings.
type TelegramConfig struct {
	Enabled bool   `koanf:"enabled"`
	Token   string `koanf:"token"`
	ChatID  int64  `koanf:"chat_id"`

	// Silent sends notifications without sound (Telegram
	// disable_notification).
	Silent bool `koanf:"silent"`
}

// DiscordConfig holds the Discord channel settings.
type DiscordConfig struct {
	Enabled    bool   `koanf:"enabled"`
	WebhookURL string `koanf:"webhook_url" validate:"omitempty,url"`
}

// SentryConfig holds error-tracking settings. An empty DSN disables
// reporting; failures are still logged.
type SentryConfig struct {
	DSN         string  `koanf:"dsn"`
	Environment string  `koanf:"environment"`
	SampleRate  float64 `koanf:"sample_rate" validate:"min=0,max=1"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            11000,
			Timeout:         30 * time.Second,
			PublicURL:       "",
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{},
		},
		Store: StoreConfig{
			Path:     "/data/mediagram",
			InMemory: false,
		},
		Plex: PlexConfig{
			URL:    "",
			Token:  "",
			WebURL: "https://app.plex.tv",
		},
		Cache: CacheConfig{
			ImageTTL:     7 * 24 * time.Hour,
			JPEGQuality:  85,
			ResizeWidth:  0,
			ResizeHeight: 0,
		},
		Dedup: DedupConfig{
			Cooldown: 20 * time.Minute,
			KeyMode:  DedupKeySlug,
		},
		Format: FormatConfig{
			LibraryFallback: "Media",
			SubtitleSource:  "summary",
			RatingStyle:     RatingRaw,
		},
		Telegram: TelegramConfig{
			Enabled: false,
			Silent:  true,
		},
		Discord: DiscordConfig{
			Enabled: false,
		},
		Sentry: SentryConfig{
			DSN:         "",
			Environment: "production",
			SampleRate:  1.0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}
