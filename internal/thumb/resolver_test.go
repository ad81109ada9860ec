// Mediagram - Plex to Chat Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediagram

package thumb

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/mediagram/internal/config"
	"github.com/tomtom215/mediagram/internal/event"
	"github.com/tomtom215/mediagram/internal/imagecache"
	"github.com/tomtom215/mediagram/internal/models"
	"github.com/tomtom215/mediagram/internal/store"
)

// testPNG returns a small valid PNG for decode tests.
func testPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 60), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test png: %v", err)
	}
	return buf.Bytes()
}

func testEvent() *event.Event {
	return &event.Event{
		Kind:       event.KindLibraryAdded,
		MediaType:  "episode",
		ServerUUID: "srv-uuid",
		Metadata: &models.Metadata{
			Type:             "episode",
			RatingKey:        "4711",
			Thumb:            "/library/metadata/4711/thumb/1",
			GrandparentThumb: "/library/metadata/100/thumb/1",
		},
	}
}

func newTestResolver(t *testing.T, plexURL string) (*Resolver, *imagecache.Cache) {
	t.Helper()

	s, err := store.Open(&config.StoreConfig{InMemory: true})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	cache := imagecache.New(s, time.Hour)
	cfg := &config.Config{
		Plex:  config.PlexConfig{URL: plexURL, Token: "test-token"},
		Cache: config.CacheConfig{ImageTTL: time.Hour, JPEGQuality: 85},
	}
	return New(cache, cfg), cache
}

func isJPEG(b []byte) bool {
	return len(b) > 2 && b[0] == 0xff && b[1] == 0xd8
}

func TestResolveFromUpload(t *testing.T) {
	t.Parallel()

	r, cache := newTestResolver(t, "")
	ev := testEvent()

	img, ok := r.Resolve(context.Background(), ev, testPNG(t))
	if !ok {
		t.Fatal("expected image from upload")
	}
	if !isJPEG(img) {
		t.Error("resolved image is not normalized JPEG")
	}

	// The normalized bytes must land in the cache under the MediaKey.
	key := imagecache.MediaKeyFor("srv-uuid", "4711")
	cached, hit, err := cache.Get(key)
	if err != nil || !hit {
		t.Fatalf("cache get: hit=%v err=%v", hit, err)
	}
	if !bytes.Equal(cached, img) {
		t.Error("cached bytes differ from resolved bytes")
	}
}

func TestResolveCachedImageWins(t *testing.T) {
	t.Parallel()

	var fetches atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		fetches.Add(1)
		if req.URL.Query().Get("X-Plex-Token") != "test-token" {
			t.Errorf("missing plex token in fetch: %s", req.URL.String())
		}
		w.Write(testPNG(t))
	}))
	defer srv.Close()

	r, _ := newTestResolver(t, srv.URL)
	ev := testEvent()

	first, ok := r.Resolve(context.Background(), ev, nil)
	if !ok {
		t.Fatal("expected image from remote fetch")
	}
	if n := fetches.Load(); n != 1 {
		t.Fatalf("expected 1 fetch, got %d", n)
	}

	// Repeat event for the same item: cached image wins, no second fetch
	// even though the event still carries a thumbnail path.
	second, ok := r.Resolve(context.Background(), ev, nil)
	if !ok {
		t.Fatal("expected cached image")
	}
	if n := fetches.Load(); n != 1 {
		t.Errorf("cached resolve still fetched remotely (%d fetches)", n)
	}
	if !bytes.Equal(first, second) {
		t.Error("cached bytes differ from original resolve")
	}
}

func TestResolveEpisodePrefersGrandparentThumb(t *testing.T) {
	t.Parallel()

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotPath = req.URL.Path
		w.Write(testPNG(t))
	}))
	defer srv.Close()

	r, _ := newTestResolver(t, srv.URL)
	if _, ok := r.Resolve(context.Background(), testEvent(), nil); !ok {
		t.Fatal("expected image")
	}
	if gotPath != "/library/metadata/100/thumb/1" {
		t.Errorf("fetched %q, want grandparent thumb path", gotPath)
	}
}

func TestResolveFetchFailureDegrades(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	r, _ := newTestResolver(t, srv.URL)
	if img, ok := r.Resolve(context.Background(), testEvent(), nil); ok || img != nil {
		t.Error("fetch failure should degrade to no image, not error")
	}
}

func TestResolveNoSourceDegrades(t *testing.T) {
	t.Parallel()

	r, _ := newTestResolver(t, "")
	ev := testEvent()
	ev.Metadata.Thumb = ""
	ev.Metadata.GrandparentThumb = ""

	if _, ok := r.Resolve(context.Background(), ev, nil); ok {
		t.Error("no upload and no thumb path should yield no image")
	}
}

func TestResolveUndecodableBytesDegrade(t *testing.T) {
	t.Parallel()

	r, _ := newTestResolver(t, "")
	if _, ok := r.Resolve(context.Background(), testEvent(), []byte("not an image")); ok {
		t.Error("garbage upload should degrade to no image")
	}
}
