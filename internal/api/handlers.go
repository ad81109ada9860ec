// Mediagram - Plex to Chat Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediagram

// Package api exposes the HTTP surface of the relay: the Plex webhook
// intake, the cached-image endpoint chat channels fetch photos from, and
// the health and metrics endpoints.
package api

import (
	"time"

	"github.com/tomtom215/mediagram/internal/config"
	"github.com/tomtom215/mediagram/internal/imagecache"
	"github.com/tomtom215/mediagram/internal/notify"
	"github.com/tomtom215/mediagram/internal/report"
	"github.com/tomtom215/mediagram/internal/store"
	"github.com/tomtom215/mediagram/internal/thumb"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Handler holds the wired pipeline components behind the HTTP surface.
type Handler struct {
	config     *config.Config
	store      *store.Store
	cache      *imagecache.Cache
	resolver   *thumb.Resolver
	dispatcher *notify.Dispatcher
	reporter   *report.Reporter

	channelNames []string
	startTime    time.Time
}

// NewHandler creates an API handler over the wired pipeline.
func NewHandler(
	cfg *config.Config,
	st *store.Store,
	cache *imagecache.Cache,
	resolver *thumb.Resolver,
	dispatcher *notify.Dispatcher,
	reporter *report.Reporter,
	channelNames []string,
) *Handler {
	return &Handler{
		config:       cfg,
		store:        st,
		cache:        cache,
		resolver:     resolver,
		dispatcher:   dispatcher,
		reporter:     reporter,
		channelNames: channelNames,
		startTime:    time.Now(),
	}
}
