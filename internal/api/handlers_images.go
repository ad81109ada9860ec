// Mediagram - Plex to Chat Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediagram

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/mediagram/internal/imagecache"
	"github.com/tomtom215/mediagram/internal/logging"
)

// Image serves a cached thumbnail by media key.
// GET /images/{key}
//
// Keys that do not match the media key shape are rejected before the store
// is consulted, so probing with invented keys never touches Badger.
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if !imagecache.ValidKey(key) {
		respondError(w, http.StatusNotFound, "IMAGE_NOT_FOUND", "No image under this key", nil)
		return
	}

	img, ok, err := h.cache.Get(key)
	if err != nil {
		logging.Error().Err(err).Str("key", key).Msg("Image cache read failed")
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "Image store unavailable", err)
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, "IMAGE_NOT_FOUND", "No image under this key", nil)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := w.Write(img); err != nil {
		logging.Error().Err(err).Msg("Failed to write image response")
	}
}
