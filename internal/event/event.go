// Mediagram - Plex to Chat Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediagram

// Package event normalizes inbound Plex webhook payloads into typed events.
//
// Classification is a pure function of the payload bytes: it either yields a
// normalized Event or one of three typed rejections. Callers decide the HTTP
// outcome from the rejection kind — missing fields are routine and acked,
// malformed bodies and unsupported media types are contract violations.
package event

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/mediagram/internal/models"
)

// Kind identifies the lifecycle event a webhook describes.
type Kind int

const (
	KindUnknown Kind = iota
	KindLibraryAdded
	KindLibraryOnDeck
	KindPlaybackStarted
	KindPlaybackPaused
	KindPlaybackResumed
	KindPlaybackStopped
	KindPlaybackScrobbled
	KindMediaRated
	KindAdmin
	KindDeviceNew
)

// String returns the Plex wire name for logging and metrics labels.
func (k Kind) String() string {
	switch k {
	case KindLibraryAdded:
		return "library.new"
	case KindLibraryOnDeck:
		return "library.on.deck"
	case KindPlaybackStarted:
		return "media.play"
	case KindPlaybackPaused:
		return "media.pause"
	case KindPlaybackResumed:
		return "media.resume"
	case KindPlaybackStopped:
		return "media.stop"
	case KindPlaybackScrobbled:
		return "media.scrobble"
	case KindMediaRated:
		return "media.rate"
	case KindAdmin:
		return "admin"
	case KindDeviceNew:
		return "device.new"
	default:
		return "unknown"
	}
}

// ParseKind maps a Plex event string to a Kind. Unrecognized events map to
// KindUnknown; they are routine and must not fail classification.
func ParseKind(event string) Kind {
	switch event {
	case "library.new":
		return KindLibraryAdded
	case "library.on.deck":
		return KindLibraryOnDeck
	case "media.play":
		return KindPlaybackStarted
	case "media.pause":
		return KindPlaybackPaused
	case "media.resume":
		return KindPlaybackResumed
	case "media.stop":
		return KindPlaybackStopped
	case "media.scrobble":
		return KindPlaybackScrobbled
	case "media.rate":
		return KindMediaRated
	case "device.new":
		return KindDeviceNew
	}
	if strings.HasPrefix(event, "admin.") {
		return KindAdmin
	}
	return KindUnknown
}

// SupportedMediaTypes lists the metadata types the pipeline notifies on.
var SupportedMediaTypes = map[string]bool{
	"movie":   true,
	"episode": true,
	"show":    true,
	"track":   true,
}

// Classification errors. ErrMissingFields is routine (logged and acked);
// the other two indicate the inbound contract changed and are surfaced as
// client errors.
var (
	ErrMalformedPayload     = errors.New("payload is not valid JSON")
	ErrMissingFields        = errors.New("payload missing actor info or metadata")
	ErrUnsupportedMediaType = errors.New("media type is not movie, episode, show or track")
)

// Event is the normalized representation of an accepted webhook.
type Event struct {
	Kind      Kind
	MediaType string

	// Provenance, required by channels that render who/where footers.
	ServerUUID   string
	ServerTitle  string
	AccountTitle string
	PlayerTitle  string

	Metadata *models.Metadata
}

// Classify validates a raw webhook payload and normalizes it into an Event.
// It is pure: no logging, no store access, no side effects.
func Classify(raw []byte) (*Event, error) {
	var wh models.Webhook
	if err := json.Unmarshal(raw, &wh); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return ClassifyWebhook(&wh)
}

// ClassifyWebhook normalizes an already-decoded webhook.
func ClassifyWebhook(wh *models.Webhook) (*Event, error) {
	// Plex sends many event kinds without actor or metadata blocks
	// (server maintenance, device events). Those are irrelevant to the
	// notification pipeline, not errors.
	if wh.Account.Title == "" || wh.Metadata == nil {
		return nil, ErrMissingFields
	}

	if !SupportedMediaTypes[wh.Metadata.Type] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMediaType, wh.Metadata.Type)
	}

	return &Event{
		Kind:         ParseKind(wh.Event),
		MediaType:    wh.Metadata.Type,
		ServerUUID:   wh.Server.UUID,
		ServerTitle:  wh.Server.Title,
		AccountTitle: wh.Account.Title,
		PlayerTitle:  wh.Player.Title,
		Metadata:     wh.Metadata,
	}, nil
}
