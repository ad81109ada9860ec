// Mediagram - Plex to Chat Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediagram

package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/mediagram/internal/config"
	"github.com/tomtom215/mediagram/internal/format"
)

// Discord sends notifications to a Discord channel via an incoming
// webhook. Messages are rendered as a single embed with the thumbnail, if
// any, attached as the embed thumbnail.
type Discord struct {
	webhookURL string
	client     *http.Client
}

// NewDiscord builds the channel from config.
func NewDiscord(cfg *config.DiscordConfig) *Discord {
	return &Discord{
		webhookURL: cfg.WebhookURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Name implements Channel.
func (d *Discord) Name() string {
	return "discord"
}

// Send implements Channel.
func (d *Discord) Send(ctx context.Context, imageURL string, msg format.Message) error {
	payload := discordWebhookPayload{
		Embeds: []discordEmbed{d.buildEmbed(imageURL, msg)},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal Discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create Discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send Discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("discord webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// buildEmbed maps a formatted message onto a Discord embed. Subtitle and
// rating share the description, separated by a blank line.
func (d *Discord) buildEmbed(imageURL string, msg format.Message) discordEmbed {
	description := msg.Subtitle
	if msg.RatingLine != "" {
		if description != "" {
			description += "\n\n"
		}
		description += msg.RatingLine
	}

	embed := discordEmbed{
		Title:       msg.Title,
		Description: description,
		URL:         msg.DetailsURL,
		Color:       0xE5A00D, // Plex amber
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	if msg.Library != "" {
		embed.Footer = discordEmbedFooter{Text: msg.Library}
	}
	if imageURL != "" {
		embed.Thumbnail = &discordEmbedMedia{URL: imageURL}
	}
	return embed
}

// Discord webhook structures
type discordWebhookPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []discordEmbed `json:"embeds,omitempty"`
}

type discordEmbed struct {
	Title       string             `json:"title,omitempty"`
	Description string             `json:"description,omitempty"`
	URL         string             `json:"url,omitempty"`
	Color       int                `json:"color,omitempty"`
	Timestamp   string             `json:"timestamp,omitempty"`
	Thumbnail   *discordEmbedMedia `json:"thumbnail,omitempty"`
	Footer      discordEmbedFooter `json:"footer,omitempty"`
}

type discordEmbedMedia struct {
	URL string `json:"url"`
}

type discordEmbedFooter struct {
	Text string `json:"text,omitempty"`
}
