// Mediagram - Plex to Chat Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediagram

package imagecache

import (
	"bytes"
	"testing"
	"time"

	"github.com/tomtom215/mediagram/internal/config"
	"github.com/tomtom215/mediagram/internal/store"
)

func testCache(t *testing.T) *Cache {
	t.Helper()

	s, err := store.Open(&config.StoreConfig{InMemory: true})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return New(s, time.Hour)
}

func TestMediaKeyDeterminism(t *testing.T) {
	t.Parallel()

	k1 := MediaKeyFor("srv-uuid", "4711")
	k2 := MediaKeyFor("srv-uuid", "4711")
	if k1 != k2 {
		t.Errorf("same inputs produced different keys: %q vs %q", k1, k2)
	}
	if k1 == MediaKeyFor("srv-uuid", "4712") {
		t.Error("different rating keys produced the same MediaKey")
	}
	if k1 == MediaKeyFor("other-uuid", "4711") {
		t.Error("different servers produced the same MediaKey")
	}
	if !ValidKey(k1) {
		t.Errorf("derived key %q does not match the MediaKey shape", k1)
	}
}

func TestValidKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		want bool
	}{
		{MediaKeyFor("a", "b"), true},
		{"0123456789abcdef0123456789abcdef01234567", true},
		{"0123456789ABCDEF0123456789ABCDEF01234567", false}, // uppercase
		{"0123456789abcdef0123456789abcdef0123456", false},  // too short
		{"0123456789abcdef0123456789abcdef012345678", false}, // too long
		{"../../etc/passwd", false},
		{"slug:deadbeef", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidKey(tt.key); got != tt.want {
			t.Errorf("ValidKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	t.Parallel()

	c := testCache(t)
	key := MediaKeyFor("srv", "1")
	img := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00}

	if err := c.Put(key, img); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := c.Get(key)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, img) {
		t.Error("image bytes differ after round trip")
	}

	if exists, _ := c.Exists(key); !exists {
		t.Error("Exists should report true after Put")
	}
}

func TestMalformedKeyShortCircuits(t *testing.T) {
	t.Parallel()

	c := testCache(t)

	// Neither call should error even though the store would reject or miss;
	// the key shape check must answer before any store round trip.
	if _, ok, err := c.Get("not-a-media-key"); ok || err != nil {
		t.Errorf("Get: ok=%v err=%v", ok, err)
	}
	if exists, err := c.Exists("not-a-media-key"); exists || err != nil {
		t.Errorf("Exists: exists=%v err=%v", exists, err)
	}
}
