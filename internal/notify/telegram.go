// Mediagram - Plex to Chat Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediagram

package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/tomtom215/mediagram/internal/config"
	"github.com/tomtom215/mediagram/internal/format"
)

// Telegram sends notifications to a single chat via the Bot API. Captions
// use Telegram HTML parse mode, which matches format.Message.HTML().
type Telegram struct {
	bot    *tele.Bot
	chatID tele.ChatID
	silent bool
}

// NewTelegram builds the channel from config. NewBot verifies the token
// against the Bot API, so a bad token fails at startup rather than on the
// first notification.
func NewTelegram(cfg *config.TelegramConfig) (*Telegram, error) {
	b, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Client: &http.Client{Timeout: 30 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return &Telegram{
		bot:    b,
		chatID: tele.ChatID(cfg.ChatID),
		silent: cfg.Silent,
	}, nil
}

// Name implements Channel.
func (t *Telegram) Name() string {
	return "telegram"
}

// Send implements Channel. With an image URL the message goes out as a
// photo whose caption carries the formatted text; Telegram fetches the
// image itself from the URL. Without one it degrades to a plain HTML
// message.
func (t *Telegram) Send(_ context.Context, imageURL string, msg format.Message) error {
	opts := &tele.SendOptions{
		ParseMode:             tele.ModeHTML,
		DisableNotification:   t.silent,
		DisableWebPagePreview: true,
	}

	var err error
	if imageURL != "" {
		photo := &tele.Photo{
			File:    tele.FromURL(imageURL),
			Caption: msg.HTML(),
		}
		_, err = t.bot.Send(t.chatID, photo, opts)
	} else {
		_, err = t.bot.Send(t.chatID, msg.HTML(), opts)
	}
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
