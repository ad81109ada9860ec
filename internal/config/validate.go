// Mediagram - Plex to Chat Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediagram

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance. Struct tag rules cover field
// ranges; cross-field rules live in Validate below.
var validate = validator.New()

// Validate checks the configuration for field-level and cross-field errors.
// It is called by Load after all layers are merged, so every component can
// assume a valid Config.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, ve := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", ve.Namespace(), ve.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return err
	}

	// Cross-field rules that struct tags cannot express.
	if c.Telegram.Enabled {
		if c.Telegram.Token == "" {
			return errors.New("telegram.token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == 0 {
			return errors.New("telegram.chat_id is required when telegram is enabled")
		}
	}
	if c.Discord.Enabled && c.Discord.WebhookURL == "" {
		return errors.New("discord.webhook_url is required when discord is enabled")
	}
	if c.Plex.Token != "" && c.Plex.URL == "" {
		return errors.New("plex.url is required when plex.token is set")
	}
	if c.Server.PublicURL != "" && strings.HasSuffix(c.Server.PublicURL, "/") {
		return errors.New("server.public_url must not end with a slash")
	}

	return nil
}
