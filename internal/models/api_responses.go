// Mediagram - Plex to Chat Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediagram

package models

import "time"

// APIResponse is the standard response envelope used by all JSON endpoints.
//
// Status field values:
//   - "success": request completed, see Data
//   - "error": request failed, see Error
type APIResponse struct {
	Status   string       `json:"status"`
	Data     interface{}  `json:"data"`
	Metadata ResponseMeta `json:"metadata"`
	Error    *APIError    `json:"error,omitempty"`
}

// ResponseMeta contains response metadata. Named distinctly from the Plex
// Metadata payload struct in this package.
type ResponseMeta struct {
	Timestamp time.Time `json:"timestamp"`
}

// APIError contains error details for failed requests.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthStatus is the payload returned by the health endpoint.
type HealthStatus struct {
	Status         string   `json:"status"` // "healthy" or "degraded"
	Version        string   `json:"version"`
	StoreConnected bool     `json:"store_connected"`
	Channels       []string `json:"channels"`
	Uptime         float64  `json:"uptime_seconds"`
}
