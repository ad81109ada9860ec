// Mediagram - Plex to Chat Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediagram

package models

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestWebhookUnmarshal(t *testing.T) {
	t.Parallel()

	payload := []byte(`{
		"event": "library.new",
		"user": true,
		"owner": true,
		"Account": {"id": 1, "title": "alice"},
		"Server": {"title": "Home", "uuid": "srv-uuid-1"},
		"Player": {"local": true, "publicAddress": "1.2.3.4", "title": "TV"},
		"Metadata": {
			"type": "episode",
			"ratingKey": "4711",
			"key": "/library/metadata/4711",
			"title": "Pilot",
			"grandparentTitle": "Some Show",
			"grandparentSlug": "some-show",
			"parentIndex": 1,
			"index": 1,
			"rating": 8.1,
			"audienceRating": 9.0,
			"librarySectionTitle": "TV Shows",
			"thumb": "/library/metadata/4711/thumb/1",
			"grandparentThumb": "/library/metadata/100/thumb/1",
			"originallyAvailableAt": "2020-01-05"
		}
	}`)

	var wh Webhook
	if err := json.Unmarshal(payload, &wh); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if wh.Event != "library.new" {
		t.Errorf("event = %q", wh.Event)
	}
	if wh.GetUsername() != "alice" {
		t.Errorf("username = %q", wh.GetUsername())
	}
	if wh.Server.UUID != "srv-uuid-1" {
		t.Errorf("server uuid = %q", wh.Server.UUID)
	}
	if wh.Metadata == nil {
		t.Fatal("metadata missing")
	}
	if wh.Metadata.AudienceRating != 9.0 {
		t.Errorf("audienceRating = %v", wh.Metadata.AudienceRating)
	}
	if wh.Metadata.GrandparentSlug != "some-show" {
		t.Errorf("grandparentSlug = %q", wh.Metadata.GrandparentSlug)
	}
}

func TestGetContentTitle(t *testing.T) {
	t.Parallel()

	wh := Webhook{Metadata: &Metadata{
		Type:             "episode",
		GrandparentTitle: "Some Show",
		ParentIndex:      2,
		Index:            5,
		Title:            "Ep",
	}}
	if got := wh.GetContentTitle(); got != "Some Show - S02E05 - Ep" {
		t.Errorf("GetContentTitle() = %q", got)
	}

	movie := Webhook{Metadata: &Metadata{Type: "movie", Title: "Foo"}}
	if got := movie.GetContentTitle(); got != "Foo" {
		t.Errorf("GetContentTitle() = %q", got)
	}

	empty := Webhook{}
	if got := empty.GetContentTitle(); got != "" {
		t.Errorf("GetContentTitle() = %q", got)
	}
}

func TestThumbPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		meta Metadata
		want string
	}{
		{
			name: "episode prefers grandparent thumb",
			meta: Metadata{Type: "episode", Thumb: "/ep", GrandparentThumb: "/show"},
			want: "/show",
		},
		{
			name: "episode without grandparent thumb",
			meta: Metadata{Type: "episode", Thumb: "/ep"},
			want: "/ep",
		},
		{
			name: "movie uses direct thumb",
			meta: Metadata{Type: "movie", Thumb: "/movie", GrandparentThumb: "/x"},
			want: "/movie",
		},
		{
			name: "no thumbs",
			meta: Metadata{Type: "movie"},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.meta.ThumbPath(); got != tt.want {
				t.Errorf("ThumbPath() = %q, want %q", got, tt.want)
			}
		})
	}
}
