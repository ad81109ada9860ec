// Mediagram - Plex to Chat Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediagram

// Package metrics provides Prometheus instrumentation for the notification
// pipeline: webhook intake, thumbnail cache efficiency, dedup suppression
// and per-channel dispatch outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Webhook intake
	WebhooksReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediagram_webhooks_received_total",
			Help: "Total webhooks received, by event kind and classification outcome",
		},
		[]string{"kind", "outcome"}, // outcome: accepted, ignored, malformed, unsupported
	)

	// Thumbnail cache
	ImageCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediagram_image_cache_hits_total",
			Help: "Total thumbnail cache hits",
		},
	)

	ImageCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediagram_image_cache_misses_total",
			Help: "Total thumbnail cache misses",
		},
	)

	ThumbnailFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediagram_thumbnail_fetches_total",
			Help: "Total remote thumbnail fetches, by result",
		},
		[]string{"result"}, // result: ok, error
	)

	// Dedup gate
	NotificationsSuppressed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediagram_notifications_suppressed_total",
			Help: "Total notifications suppressed within the cooldown window",
		},
	)

	// Dispatch
	DispatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediagram_dispatches_total",
			Help: "Total channel dispatches, by channel and result",
		},
		[]string{"channel", "result"}, // result: ok, error
	)

	DispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediagram_dispatch_duration_seconds",
			Help:    "Channel dispatch duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"channel"},
	)
)

// RecordWebhook records one webhook intake outcome.
func RecordWebhook(kind, outcome string) {
	WebhooksReceived.WithLabelValues(kind, outcome).Inc()
}

// RecordDispatch records one channel dispatch outcome.
func RecordDispatch(channel string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	DispatchesTotal.WithLabelValues(channel, result).Inc()
}
