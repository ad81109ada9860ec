// Mediagram - Plex to Chat Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediagram

// Package imagecache provides the content-addressed thumbnail cache.
//
// Thumbnails are keyed by MediaKey, a deterministic fingerprint of the
// originating server and the item's rating key, so repeat events for the
// same logical item hit the same cache entry.
package imagecache

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"time"

	"github.com/tomtom215/mediagram/internal/store"
)

// keyPrefix namespaces image blobs in the shared store.
const keyPrefix = "img:"

// mediaKeyPattern matches the fixed MediaKey shape: 40 lowercase hex chars.
var mediaKeyPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

// MediaKeyFor derives the deterministic fingerprint identifying one logical
// media item: sha1(serverUUID ++ ratingKey).
func MediaKeyFor(serverUUID, ratingKey string) string {
	sum := sha1.Sum([]byte(serverUUID + ratingKey))
	return hex.EncodeToString(sum[:])
}

// ValidKey reports whether key matches the fixed MediaKey shape. The public
// image-read path checks this before any store round trip so the endpoint
// cannot be used as a scan oracle over arbitrary store keys.
func ValidKey(key string) bool {
	return mediaKeyPattern.MatchString(key)
}

// Cache is the content-addressed image store over the shared key-value
// store.
type Cache struct {
	store *store.Store
	ttl   time.Duration
}

// New creates a Cache writing entries with the given TTL.
func New(s *store.Store, ttl time.Duration) *Cache {
	return &Cache{store: s, ttl: ttl}
}

// Get returns the cached image for key. Keys that do not match the MediaKey
// shape short-circuit to a miss without touching the store.
func (c *Cache) Get(key string) ([]byte, bool, error) {
	if !ValidKey(key) {
		return nil, false, nil
	}
	return c.store.Get(keyPrefix + key)
}

// Put stores image bytes under key, refreshing the TTL on overwrite.
func (c *Cache) Put(key string, img []byte) error {
	return c.store.SetTTL(keyPrefix+key, img, c.ttl)
}

// Exists reports whether an unexpired image is cached for key.
func (c *Cache) Exists(key string) (bool, error) {
	if !ValidKey(key) {
		return false, nil
	}
	return c.store.Exists(keyPrefix + key)
}
