// Mediagram - Plex to Chat Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediagram

// Package report forwards contract violations and dispatch failures to the
// error-tracking collaborator (Sentry). Reporting is best-effort: with no
// DSN configured every call is a no-op and failures remain visible in logs
// only.
package report

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/tomtom215/mediagram/internal/config"
	"github.com/tomtom215/mediagram/internal/logging"
)

// Reporter wraps the Sentry client. The zero value (and any Reporter built
// from an empty DSN) is a disabled no-op, so callers never nil-check.
type Reporter struct {
	enabled bool
}

// Init configures the global Sentry client and returns a Reporter. An empty
// DSN disables reporting without error.
func Init(cfg *config.SentryConfig, release string) (*Reporter, error) {
	if cfg.DSN == "" {
		logging.Info().Msg("Error tracking disabled (no DSN configured)")
		return &Reporter{}, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          release,
		TracesSampleRate: cfg.SampleRate,
	})
	if err != nil {
		return nil, err
	}

	logging.Info().Str("environment", cfg.Environment).Msg("Error tracking enabled")
	return &Reporter{enabled: true}, nil
}

// CaptureError forwards an error with a component tag.
func (r *Reporter) CaptureError(err error, component string) {
	if r == nil || !r.enabled || err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", component)
		sentry.CaptureException(err)
	})
}

// CaptureMessage forwards a plain message with a component tag.
func (r *Reporter) CaptureMessage(msg, component string) {
	if r == nil || !r.enabled || msg == "" {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", component)
		sentry.CaptureMessage(msg)
	})
}

// Close flushes buffered events. Call on shutdown.
func (r *Reporter) Close() {
	if r == nil || !r.enabled {
		return
	}
	sentry.Flush(2 * time.Second)
}
