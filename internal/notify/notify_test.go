// Mediagram - Plex to Chat Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediagram

package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/mediagram/internal/config"
	"github.com/tomtom215/mediagram/internal/dedup"
	"github.com/tomtom215/mediagram/internal/event"
	"github.com/tomtom215/mediagram/internal/format"
	"github.com/tomtom215/mediagram/internal/models"
	"github.com/tomtom215/mediagram/internal/store"
)

// fakeChannel records sends and can be told to fail.
type fakeChannel struct {
	name  string
	fail  error
	sends atomic.Int64
}

func (f *fakeChannel) Name() string { return f.name }

func (f *fakeChannel) Send(_ context.Context, _ string, _ format.Message) error {
	f.sends.Add(1)
	return f.fail
}

func newTestGate(t *testing.T, cooldown time.Duration) *dedup.Gate {
	t.Helper()
	s, err := store.Open(&config.StoreConfig{InMemory: true})
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return dedup.New(s, &config.DedupConfig{
		Cooldown: cooldown,
		KeyMode:  config.DedupKeySlug,
	})
}

func testEvent(slug string) *event.Event {
	return &event.Event{
		Kind:      event.KindLibraryAdded,
		MediaType: "movie",
		Metadata: &models.Metadata{
			Type:  "movie",
			Title: "Heat",
			Slug:  slug,
		},
	}
}

func TestDispatcherFansOutToAllChannels(t *testing.T) {
	t.Parallel()

	a := &fakeChannel{name: "alpha"}
	b := &fakeChannel{name: "beta"}
	d := NewDispatcher([]Channel{a, b}, newTestGate(t, time.Minute), nil)

	ok := d.Dispatch(testEvent("heat-1995"), format.Message{Title: "Heat (1995)"}, "")
	if !ok {
		t.Fatal("Dispatch() = false, want true")
	}
	d.Close()

	if got := a.sends.Load(); got != 1 {
		t.Errorf("channel alpha sends = %d, want 1", got)
	}
	if got := b.sends.Load(); got != 1 {
		t.Errorf("channel beta sends = %d, want 1", got)
	}
}

func TestDispatcherChannelFailureDoesNotBlockOthers(t *testing.T) {
	t.Parallel()

	failing := &fakeChannel{name: "alpha", fail: errors.New("api down")}
	healthy := &fakeChannel{name: "beta"}
	d := NewDispatcher([]Channel{failing, healthy}, newTestGate(t, time.Minute), nil)

	if !d.Dispatch(testEvent("heat-1995"), format.Message{Title: "Heat (1995)"}, "") {
		t.Fatal("Dispatch() = false, want true")
	}
	d.Close()

	if got := healthy.sends.Load(); got != 1 {
		t.Errorf("healthy channel sends = %d, want 1", got)
	}
}

func TestDispatcherSuppressesDuplicates(t *testing.T) {
	t.Parallel()

	ch := &fakeChannel{name: "alpha"}
	d := NewDispatcher([]Channel{ch}, newTestGate(t, time.Minute), nil)

	ev := testEvent("heat-1995")
	msg := format.Message{Title: "Heat (1995)"}

	if !d.Dispatch(ev, msg, "") {
		t.Fatal("first Dispatch() = false, want true")
	}
	if d.Dispatch(ev, msg, "") {
		t.Error("second Dispatch() = true, want suppressed")
	}
	d.Close()

	if got := ch.sends.Load(); got != 1 {
		t.Errorf("sends = %d, want 1", got)
	}
}

func TestDispatcherNoChannels(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(nil, newTestGate(t, time.Minute), nil)
	defer d.Close()

	if d.Dispatch(testEvent("heat-1995"), format.Message{Title: "Heat (1995)"}, "") {
		t.Error("Dispatch() = true with no channels, want false")
	}
}

func TestDiscordSend(t *testing.T) {
	t.Parallel()

	var got discordWebhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewDiscord(&config.DiscordConfig{WebhookURL: srv.URL})
	msg := format.Message{
		Title:      "Heat (1995)",
		Subtitle:   "A thief and a detective circle each other.",
		RatingLine: "🍿 8.3",
		Library:    "Movies",
		DetailsURL: "https://app.plex.tv/web/index.html#!/server/abc/details?key=%2Flibrary%2Fmetadata%2F42",
	}

	if err := d.Send(context.Background(), "https://relay.example/images/deadbeef", msg); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if len(got.Embeds) != 1 {
		t.Fatalf("embeds = %d, want 1", len(got.Embeds))
	}
	e := got.Embeds[0]
	if e.Title != msg.Title {
		t.Errorf("embed title = %q, want %q", e.Title, msg.Title)
	}
	if e.URL != msg.DetailsURL {
		t.Errorf("embed url = %q, want %q", e.URL, msg.DetailsURL)
	}
	if e.Thumbnail == nil || e.Thumbnail.URL != "https://relay.example/images/deadbeef" {
		t.Errorf("embed thumbnail = %+v, want image URL", e.Thumbnail)
	}
	if e.Footer.Text != "Movies" {
		t.Errorf("embed footer = %q, want Movies", e.Footer.Text)
	}
}

func TestDiscordSendErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	d := NewDiscord(&config.DiscordConfig{WebhookURL: srv.URL})
	if err := d.Send(context.Background(), "", format.Message{Title: "Heat"}); err == nil {
		t.Error("Send() error = nil, want error on 429")
	}
}
