// Mediagram - Plex to Chat Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediagram

// Package thumb resolves the thumbnail image for an event: cached bytes
// win, then the multipart upload, then a remote fetch from the Plex server.
// Every failure degrades to "no image"; a notification without a thumbnail
// is always preferable to a dropped notification.
package thumb

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/disintegration/imaging"

	"github.com/tomtom215/mediagram/internal/config"
	"github.com/tomtom215/mediagram/internal/event"
	"github.com/tomtom215/mediagram/internal/imagecache"
	"github.com/tomtom215/mediagram/internal/logging"
	"github.com/tomtom215/mediagram/internal/metrics"
)

// maxThumbnailBytes bounds remote thumbnail downloads. Plex posters are
// well under this; anything larger is a misbehaving upstream.
const maxThumbnailBytes = 10 << 20

// Resolver obtains and normalizes thumbnail bytes for events.
type Resolver struct {
	cache  *imagecache.Cache
	plex   config.PlexConfig
	encode config.CacheConfig
	client *http.Client
}

// New creates a Resolver backed by the given image cache.
func New(cache *imagecache.Cache, cfg *config.Config) *Resolver {
	return &Resolver{
		cache:  cache,
		plex:   cfg.Plex,
		encode: cfg.Cache,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Resolve returns the normalized thumbnail for the event and whether one is
// available. The cached image always wins over re-fetching, even when the
// event carries a new thumbnail path: repeat events for the same item must
// not trigger redundant downloads or encodes.
func (r *Resolver) Resolve(ctx context.Context, ev *event.Event, uploaded []byte) ([]byte, bool) {
	key := imagecache.MediaKeyFor(ev.ServerUUID, ev.Metadata.RatingKey)

	if img, ok, err := r.cache.Get(key); err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("Image cache read failed, continuing without cache")
	} else if ok {
		metrics.ImageCacheHits.Inc()
		logging.Debug().Str("key", key).Msg("Using cached image")
		return img, true
	}
	metrics.ImageCacheMisses.Inc()

	src := uploaded
	if len(src) == 0 {
		src = r.fetchRemote(ctx, ev)
	}
	if len(src) == 0 {
		return nil, false
	}

	img, err := r.normalize(src)
	if err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("Thumbnail bytes not decodable, sending without image")
		return nil, false
	}

	if err := r.cache.Put(key, img); err != nil {
		// Store failure only costs us the cache entry; the notification
		// still carries this image.
		logging.Warn().Err(err).Str("key", key).Msg("Failed to cache thumbnail")
	} else {
		logging.Debug().Str("key", key).Int("bytes", len(img)).Msg("Cached new image")
	}

	return img, true
}

// MediaKey returns the cache key Resolve uses for the event.
func (r *Resolver) MediaKey(ev *event.Event) string {
	return imagecache.MediaKeyFor(ev.ServerUUID, ev.Metadata.RatingKey)
}

// fetchRemote downloads the thumbnail from the Plex server, preferring the
// show poster for episodes. Returns nil on any failure.
func (r *Resolver) fetchRemote(ctx context.Context, ev *event.Event) []byte {
	path := ev.Metadata.ThumbPath()
	if path == "" || r.plex.URL == "" {
		return nil
	}

	params := url.Values{}
	if r.plex.Token != "" {
		params.Set("X-Plex-Token", r.plex.Token)
	}
	fetchURL := fmt.Sprintf("%s%s?%s", r.plex.URL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		metrics.ThumbnailFetches.WithLabelValues("error").Inc()
		logging.Warn().Err(err).Str("path", path).Msg("Thumbnail request build failed")
		return nil
	}

	resp, err := r.client.Do(req)
	if err != nil {
		metrics.ThumbnailFetches.WithLabelValues("error").Inc()
		logging.Warn().Err(err).Str("path", path).Msg("Thumbnail fetch failed, sending without image")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ThumbnailFetches.WithLabelValues("error").Inc()
		logging.Warn().Int("status", resp.StatusCode).Str("path", path).Msg("Thumbnail fetch returned non-200")
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxThumbnailBytes))
	if err != nil {
		metrics.ThumbnailFetches.WithLabelValues("error").Inc()
		logging.Warn().Err(err).Str("path", path).Msg("Thumbnail body read failed")
		return nil
	}

	metrics.ThumbnailFetches.WithLabelValues("ok").Inc()
	return body
}

// normalize re-encodes source bytes to a JPEG. Resizing only applies when
// both bounds are configured; the default keeps source dimensions.
func (r *Resolver) normalize(src []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("decode thumbnail: %w", err)
	}

	if r.encode.ResizeWidth > 0 && r.encode.ResizeHeight > 0 {
		img = imaging.Fit(img, r.encode.ResizeWidth, r.encode.ResizeHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(r.encode.JPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
