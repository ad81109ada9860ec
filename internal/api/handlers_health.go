// Mediagram - Plex to Chat Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediagram

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/mediagram/internal/models"
)

// Ping answers keep-alive pingers with a fixed payload.
// GET /ping
func (h *Handler) Ping(w http.ResponseWriter, _ *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]string{"ping": "pong"})
}

// Health reports liveness and the state of the pipeline dependencies.
// GET /healthz
//
// A store probe failure degrades the status but keeps the endpoint at 200:
// the relay still acknowledges webhooks and dispatches text notifications
// without its store.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	storeOK := h.store.Ping() == nil

	status := "healthy"
	if !storeOK {
		status = "degraded"
	}

	respondSuccess(w, http.StatusOK, &models.HealthStatus{
		Status:         status,
		Version:        Version,
		StoreConnected: storeOK,
		Channels:       h.channelNames,
		Uptime:         time.Since(h.startTime).Seconds(),
	})
}
