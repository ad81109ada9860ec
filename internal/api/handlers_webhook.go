// Mediagram - Plex to Chat Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediagram

package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/tomtom215/mediagram/internal/event"
	"github.com/tomtom215/mediagram/internal/format"
	"github.com/tomtom215/mediagram/internal/logging"
	"github.com/tomtom215/mediagram/internal/metrics"
)

// maxWebhookBytes bounds the whole webhook request, payload and thumbnail
// included.
const maxWebhookBytes = 12 << 20 // 12 MB

// Webhook handles incoming Plex webhook notifications
// POST /webhook
//
// Plex sends multipart/form-data with a "payload" JSON field and, for some
// events, a "thumb" image part. A raw JSON body is accepted too, which is
// what most test clients and curl invocations send.
//
// Response contract:
//   - 200 for every acknowledged event, including kinds the relay does not
//     notify on and payloads without actor/metadata blocks. Plex retries
//     nothing, so there is no point failing routine traffic.
//   - 400 for malformed JSON and unsupported media types. Both mean the
//     inbound contract changed and are reported.
//
// Only library.new events proceed to thumbnail resolution, formatting and
// dispatch.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, uploaded, err := readWebhookBody(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to read request body", err)
		return
	}

	ev, err := event.Classify(payload)
	if err != nil {
		h.respondClassification(w, err)
		return
	}

	logging.Info().
		Str("event", ev.Kind.String()).
		Str("user", sanitizeLogValue(ev.AccountTitle)).
		Str("title", sanitizeLogValue(format.Title(ev.Metadata))).
		Str("server", sanitizeLogValue(ev.ServerTitle)).
		Msg("Webhook received")

	if ev.Kind != event.KindLibraryAdded {
		metrics.RecordWebhook(ev.Kind.String(), "ignored")
		respondSuccess(w, http.StatusOK, map[string]string{"event": ev.Kind.String(), "action": "ignored"})
		return
	}
	metrics.RecordWebhook(ev.Kind.String(), "accepted")

	// Resolve the thumbnail into the cache; every failure degrades to a
	// text-only notification.
	imageURL := ""
	if _, ok := h.resolver.Resolve(r.Context(), ev, uploaded); ok && h.config.Server.PublicURL != "" {
		imageURL = h.config.Server.PublicURL + "/images/" + h.resolver.MediaKey(ev)
	}

	msg := format.Build(ev, h.config)
	dispatched := h.dispatcher.Dispatch(ev, msg, imageURL)

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"event":      ev.Kind.String(),
		"dispatched": dispatched,
	})
}

// respondClassification maps a classification rejection onto the response
// contract. Missing fields are routine; the other two rejections are
// contract violations and go to the error tracker.
func (h *Handler) respondClassification(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, event.ErrMissingFields):
		metrics.RecordWebhook("unknown", "ignored")
		logging.Debug().Msg("Webhook without actor or metadata, ignoring")
		respondSuccess(w, http.StatusOK, map[string]string{"action": "ignored"})

	case errors.Is(err, event.ErrUnsupportedMediaType):
		metrics.RecordWebhook("unknown", "unsupported")
		h.reporter.CaptureError(err, "webhook")
		respondError(w, http.StatusBadRequest, "UNSUPPORTED_MEDIA_TYPE", "Media type is not notifiable", err)

	default:
		metrics.RecordWebhook("unknown", "malformed")
		h.reporter.CaptureError(err, "webhook")
		respondError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "Failed to parse webhook payload", err)
	}
}

// readWebhookBody extracts the payload JSON and the optional uploaded
// thumbnail from the request. The thumbnail is nil when absent.
func readWebhookBody(r *http.Request) (payload, uploaded []byte, err error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxWebhookBytes)
	defer r.Body.Close()

	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "multipart/form-data") {
		payload, err = io.ReadAll(r.Body)
		return payload, nil, err
	}

	if err := r.ParseMultipartForm(maxWebhookBytes); err != nil {
		return nil, nil, err
	}
	payload = []byte(r.FormValue("payload"))

	file, _, ferr := r.FormFile("thumb")
	if ferr == nil {
		defer file.Close()
		uploaded, err = io.ReadAll(file)
		if err != nil {
			// A broken upload only costs the image, not the notification.
			logging.Warn().Err(err).Msg("Failed to read uploaded thumbnail")
			uploaded = nil
		}
	}
	return payload, uploaded, nil
}
