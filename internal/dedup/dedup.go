// Mediagram - Plex to Chat Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediagram

// Package dedup suppresses redundant notifications for the same logical
// item within a cooldown window.
//
// Plex frequently emits several library.new events for one title in quick
// succession (per-episode scan, then a per-season aggregate); the gate
// coalesces those into one user-visible notification per cooldown period.
package dedup

import (
	"crypto/md5"
	"encoding/hex"
	"time"

	"github.com/tomtom215/mediagram/internal/config"
	"github.com/tomtom215/mediagram/internal/event"
	"github.com/tomtom215/mediagram/internal/format"
	"github.com/tomtom215/mediagram/internal/logging"
	"github.com/tomtom215/mediagram/internal/metrics"
	"github.com/tomtom215/mediagram/internal/store"
)

// keyPrefix namespaces suppression markers in the shared store.
const keyPrefix = "slug:"

// Gate enforces the suppression policy.
type Gate struct {
	store    *store.Store
	cooldown time.Duration
	keyMode  config.DedupKeyMode
}

// New creates a Gate with the configured cooldown and key derivation mode.
func New(s *store.Store, cfg *config.DedupConfig) *Gate {
	return &Gate{store: s, cooldown: cfg.Cooldown, keyMode: cfg.KeyMode}
}

// SuppressionKey derives the marker key for an event. The second return is
// false when the item has neither a slug nor a title, in which case the
// event is never suppressed.
func (g *Gate) SuppressionKey(ev *event.Event) (string, bool) {
	var basis string
	switch g.keyMode {
	case config.DedupKeyTitle:
		basis = format.Title(ev.Metadata)
	default:
		basis = format.Slug(ev.Metadata)
		if basis == "" {
			basis = format.Title(ev.Metadata)
		}
	}
	if basis == "" {
		return "", false
	}
	sum := md5.Sum([]byte(basis))
	return keyPrefix + hex.EncodeToString(sum[:]), true
}

// ShouldSuppress reports whether a marker exists for the event's key. It
// never mutates state; store failures degrade to "do not suppress" so a
// flaky store costs a duplicate message, not a lost one.
func (g *Gate) ShouldSuppress(ev *event.Event) bool {
	key, ok := g.SuppressionKey(ev)
	if !ok {
		return false
	}

	exists, err := g.store.Exists(key)
	if err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("Dedup store check failed, not suppressing")
		return false
	}
	if exists {
		metrics.NotificationsSuppressed.Inc()
	}
	return exists
}

// MarkSent unconditionally writes the suppression marker with the cooldown
// TTL. Callers invoke this immediately before dispatching, not after, so a
// concurrent duplicate cannot double-send while a network call is in
// flight. A marker write from a losing duplicate is harmless.
func (g *Gate) MarkSent(ev *event.Event) {
	key, ok := g.SuppressionKey(ev)
	if !ok {
		return
	}
	if err := g.store.SetTTL(key, []byte("1"), g.cooldown); err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("Failed to write suppression marker")
	}
}
