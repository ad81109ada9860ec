// Mediagram - Plex to Chat Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediagram

// Package models defines the wire structures exchanged with Plex and the
// standard API response envelope.
package models

import "fmt"

// Plex Webhook Models
// These structures represent HTTP webhook payloads from Plex Media Server.
// Webhooks arrive as multipart/form-data with a JSON "payload" field and an
// optional "thumb" file attachment.
// Documentation: https://support.plex.tv/articles/115002267687-webhooks/
// Events: media.play, media.pause, media.resume, media.stop, media.scrobble,
//         media.rate, library.on.deck, library.new, admin.database.backup,
//         admin.database.corrupted, device.new

// Webhook represents a Plex webhook payload.
type Webhook struct {
	Event    string         `json:"event"`              // Webhook event type (e.g. "library.new", "media.play")
	User     bool           `json:"user"`               // True if user-initiated action
	Owner    bool           `json:"owner"`              // True if server owner triggered event
	Account  WebhookAccount `json:"Account"`            // User account information
	Server   WebhookServer  `json:"Server"`             // Plex server information
	Player   WebhookPlayer  `json:"Player"`             // Client/device information
	Metadata *Metadata      `json:"Metadata,omitempty"` // Content metadata (present for media events)
}

// WebhookAccount represents the user account in the webhook payload.
type WebhookAccount struct {
	ID    int    `json:"id"`    // Plex account ID
	Thumb string `json:"thumb"` // Profile picture URL
	Title string `json:"title"` // Username/display name
}

// WebhookServer represents the Plex server in the webhook payload.
type WebhookServer struct {
	Title string `json:"title"` // Server name
	UUID  string `json:"uuid"`  // Server machine identifier
}

// WebhookPlayer represents the client/device in the webhook payload.
type WebhookPlayer struct {
	Local         bool   `json:"local"`         // True if on local network
	PublicAddress string `json:"publicAddress"` // Client IP address
	Title         string `json:"title"`         // Device name
	UUID          string `json:"uuid"`          // Device unique identifier
}

// Metadata represents content metadata in the webhook payload.
type Metadata struct {
	LibrarySectionType    string  `json:"librarySectionType"`    // "movie", "show", "artist"
	RatingKey             string  `json:"ratingKey"`             // Content unique identifier
	Key                   string  `json:"key"`                   // Metadata API path
	ParentRatingKey       string  `json:"parentRatingKey"`       // Parent (season/album) key
	GrandparentRatingKey  string  `json:"grandparentRatingKey"`  // Grandparent (show/artist) key
	GUID                  string  `json:"guid"`                  // External GUID (imdb://, tvdb://)
	LibrarySectionTitle   string  `json:"librarySectionTitle"`   // Library name
	LibrarySectionID      int     `json:"librarySectionID"`      // Library section ID
	Type                  string  `json:"type"`                  // Content type: "movie", "episode", "show", "track"
	Title                 string  `json:"title"`                 // Content title
	GrandparentTitle      string  `json:"grandparentTitle"`      // Show/Artist title
	ParentTitle           string  `json:"parentTitle"`           // Season/Album title
	Slug                  string  `json:"slug"`                  // Content slug
	ParentSlug            string  `json:"parentSlug"`            // Season/Album slug
	GrandparentSlug       string  `json:"grandparentSlug"`       // Show/Artist slug
	ContentRating         string  `json:"contentRating"`         // Rating (e.g. "PG-13", "TV-MA")
	Summary               string  `json:"summary"`               // Description/synopsis
	Tagline               string  `json:"tagline"`               // Marketing tagline (movies)
	Rating                float64 `json:"rating"`                // Critic rating (0-10)
	AudienceRating        float64 `json:"audienceRating"`        // Audience rating (0-10)
	Index                 int     `json:"index"`                 // Episode/track number
	ParentIndex           int     `json:"parentIndex"`           // Season/disc number
	Year                  int     `json:"year"`                  // Release year
	OriginallyAvailableAt string  `json:"originallyAvailableAt"` // Original air date (YYYY-MM-DD)
	Thumb                 string  `json:"thumb"`                 // Thumbnail path
	Art                   string  `json:"art"`                   // Background art path
	ParentThumb           string  `json:"parentThumb"`           // Parent thumbnail path
	GrandparentThumb      string  `json:"grandparentThumb"`      // Grandparent thumbnail path
	GrandparentArt        string  `json:"grandparentArt"`        // Grandparent art path
	AddedAt               int64   `json:"addedAt"`               // Unix timestamp when added
	UpdatedAt             int64   `json:"updatedAt"`             // Unix timestamp last updated
}

// GetUsername returns the username from the webhook account.
func (w *Webhook) GetUsername() string {
	return w.Account.Title
}

// GetContentTitle returns a formatted content title for logging.
func (w *Webhook) GetContentTitle() string {
	if w.Metadata == nil {
		return ""
	}
	if w.Metadata.GrandparentTitle != "" {
		// TV Show episode: "Show Name - S01E05 - Episode Title"
		return fmt.Sprintf("%s - S%02dE%02d - %s",
			w.Metadata.GrandparentTitle,
			w.Metadata.ParentIndex,
			w.Metadata.Index,
			w.Metadata.Title)
	}
	return w.Metadata.Title
}

// ThumbPath returns the thumbnail path to fetch for this item. Episodes use
// the grandparent (show) thumbnail when present; everything else uses the
// direct thumbnail.
func (m *Metadata) ThumbPath() string {
	if m.Type == "episode" && m.GrandparentThumb != "" {
		return m.GrandparentThumb
	}
	return m.Thumb
}
