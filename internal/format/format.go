// Mediagram - Plex to Chat Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediagram

// Package format derives the human-readable notification text from event
// metadata. Everything here is a pure function of the metadata and the
// format configuration; the Dispatcher hands the result to channels
// verbatim.
package format

import (
	"fmt"
	"html"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/mediagram/internal/config"
	"github.com/tomtom215/mediagram/internal/event"
	"github.com/tomtom215/mediagram/internal/models"
)

// Message is the formatted notification handed to the Dispatcher. Channels
// must not alter the text content.
type Message struct {
	Title      string // headline (series root or title with year)
	Subtitle   string // episode/track line, or movie summary
	RatingLine string // audience and critic ratings; empty when neither present
	Library    string // library section label
	DetailsURL string // deep link into the Plex web app; empty without server UUID
}

// Title derives the notification headline. The series (grandparent) title
// wins for episodes and tracks; otherwise the item title gets its year
// appended unless the year already appears in the title text.
func Title(m *models.Metadata) string {
	if m.GrandparentTitle != "" {
		return m.GrandparentTitle
	}
	title := m.Title
	if m.Year != 0 && !strings.Contains(title, strconv.Itoa(m.Year)) {
		title += fmt.Sprintf(" (%d)", m.Year)
	}
	return title
}

// Subtitle derives the second line. For items under a grandparent: the
// album title for tracks, else "S<season> E<episode>" when both indexes are
// set, else the original air date - followed by the item title when one
// exists. Movies fall back to the configured subtitle source.
func Subtitle(m *models.Metadata, cfg *config.FormatConfig) string {
	var sub string

	switch {
	case m.GrandparentTitle != "":
		if m.Type == "track" {
			sub = m.ParentTitle
		} else if m.Index > 0 && m.ParentIndex > 0 {
			sub = fmt.Sprintf("S%d E%d", m.ParentIndex, m.Index)
		} else if m.OriginallyAvailableAt != "" {
			sub = m.OriginallyAvailableAt
		}
		if m.Title != "" {
			if sub != "" {
				sub += " - " + m.Title
			} else {
				sub = m.Title
			}
		}
	case m.Type == "movie":
		sub = m.Summary
		if cfg.SubtitleSource == "tagline" && m.Tagline != "" {
			sub = m.Tagline
		}
	case m.Summary != "":
		sub = m.Summary
	}

	return sub
}

// RatingLine joins the present rating fields in fixed order: audience
// rating first, then critic rating. Returns empty when neither is present.
func RatingLine(m *models.Metadata, cfg *config.FormatConfig) string {
	var parts []string
	if m.AudienceRating > 0 {
		parts = append(parts, "🍿 "+formatRating(m.AudienceRating, cfg.RatingStyle))
	}
	if m.Rating > 0 {
		parts = append(parts, "📺 "+formatRating(m.Rating, cfg.RatingStyle))
	}
	return strings.Join(parts, " — ")
}

// formatRating renders a 0-10 rating per the configured style.
func formatRating(v float64, style config.RatingStyle) string {
	switch style {
	case config.RatingStars:
		return strings.Repeat("⭐", int(v/2))
	case config.RatingHalfStars:
		full := int(v / 2)
		s := strings.Repeat("⭐", full)
		if v/2-float64(full) >= 0.5 {
			s += "½"
		}
		return s
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}

// Library returns the library section label, or the configured fallback.
func Library(m *models.Metadata, cfg *config.FormatConfig) string {
	if m.LibrarySectionTitle != "" {
		return m.LibrarySectionTitle
	}
	return cfg.LibraryFallback
}

// Slug returns the best display slug for the item: series, then season,
// then the item's own. Empty when the item carries no slug at all.
func Slug(m *models.Metadata) string {
	if m.GrandparentSlug != "" {
		return m.GrandparentSlug
	}
	if m.ParentSlug != "" {
		return m.ParentSlug
	}
	return m.Slug
}

// DetailsURL builds the deep link into the Plex web app for the item. The
// metadata key's trailing "/children" is stripped so season aggregates link
// to the season itself.
func DetailsURL(ev *event.Event, webURL string) string {
	if ev.ServerUUID == "" || webURL == "" {
		return ""
	}
	params := url.Values{}
	params.Set("key", strings.TrimSuffix(ev.Metadata.Key, "/children"))
	return fmt.Sprintf("%s/web/index.html#!/server/%s/details?%s",
		webURL, ev.ServerUUID, params.Encode())
}

// Build assembles the full Message for an event.
func Build(ev *event.Event, cfg *config.Config) Message {
	return Message{
		Title:      Title(ev.Metadata),
		Subtitle:   Subtitle(ev.Metadata, &cfg.Format),
		RatingLine: RatingLine(ev.Metadata, &cfg.Format),
		Library:    Library(ev.Metadata, &cfg.Format),
		DetailsURL: DetailsURL(ev, cfg.Plex.WebURL),
	}
}

// HTML renders the message as the Telegram-style HTML caption: bold title,
// subtitle, optional rating line, and the library line as a deep link.
func (m Message) HTML() string {
	var b strings.Builder
	b.WriteString("<strong>")
	b.WriteString(html.EscapeString(m.Title))
	b.WriteString("</strong>\n")
	b.WriteString(html.EscapeString(m.Subtitle))
	if m.RatingLine != "" {
		b.WriteString("\n")
		b.WriteString(m.RatingLine)
	}
	b.WriteString("\n")
	if m.DetailsURL != "" {
		fmt.Fprintf(&b, "<a href='%s'>🎬 %s</a>", m.DetailsURL, html.EscapeString(m.Library))
	} else {
		b.WriteString("🎬 " + html.EscapeString(m.Library))
	}
	return b.String()
}

// Plain renders the message without markup, for channels that take plain
// text descriptions.
func (m Message) Plain() string {
	var b strings.Builder
	b.WriteString(m.Title)
	b.WriteString("\n")
	b.WriteString(m.Subtitle)
	if m.RatingLine != "" {
		b.WriteString("\n")
		b.WriteString(m.RatingLine)
	}
	b.WriteString("\n🎬 ")
	b.WriteString(m.Library)
	return b.String()
}
