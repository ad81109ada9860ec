// Mediagram - Plex to Chat Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediagram

// Package notify delivers formatted notifications to the configured chat
// channels.
//
// Dispatch is fire-and-forget relative to the triggering HTTP request: the
// webhook responder never waits on a chat API round trip. Each channel
// sends independently; one failing channel must not block or fail another.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/mediagram/internal/dedup"
	"github.com/tomtom215/mediagram/internal/event"
	"github.com/tomtom215/mediagram/internal/format"
	"github.com/tomtom215/mediagram/internal/logging"
	"github.com/tomtom215/mediagram/internal/metrics"
	"github.com/tomtom215/mediagram/internal/report"
)

// Channel is the capability interface implemented per chat destination.
// An empty imageURL selects the text-only variant.
type Channel interface {
	Name() string
	Send(ctx context.Context, imageURL string, msg format.Message) error
}

// sendTimeout bounds one channel send. There is no retry and no
// cancellation contract beyond this; a send either completes or fails and
// is logged.
const sendTimeout = 30 * time.Second

// result carries one channel send outcome to the consumer goroutine.
type result struct {
	channel string
	title   string
	err     error
}

// Dispatcher fans formatted messages out to all configured channels in the
// background and funnels per-send outcomes through a single consumer that
// logs and reports failures.
type Dispatcher struct {
	channels []Channel
	gate     *dedup.Gate
	reporter *report.Reporter

	results chan result
	wg      sync.WaitGroup
	done    chan struct{}
}

// NewDispatcher creates a Dispatcher and starts its result consumer.
func NewDispatcher(channels []Channel, gate *dedup.Gate, reporter *report.Reporter) *Dispatcher {
	d := &Dispatcher{
		channels: channels,
		gate:     gate,
		reporter: reporter,
		results:  make(chan result, 16),
		done:     make(chan struct{}),
	}
	go d.consume()
	return d
}

// consume drains send outcomes. Failures are logged and forwarded to the
// error tracker; they are never escalated to the webhook sender.
func (d *Dispatcher) consume() {
	defer close(d.done)
	for res := range d.results {
		metrics.RecordDispatch(res.channel, res.err)
		if res.err != nil {
			logging.Error().
				Err(res.err).
				Str("channel", res.channel).
				Str("title", res.title).
				Msg("Dispatch failed")
			d.reporter.CaptureError(res.err, "dispatch."+res.channel)
			continue
		}
		logging.Info().
			Str("channel", res.channel).
			Str("title", res.title).
			Msg("Notification sent")
	}
}

// Dispatch sends the message to every channel unless the dedup gate
// suppresses it. It returns immediately; the value reports whether sends
// were scheduled (false means suppressed or no channels configured).
//
// The suppression marker is written before the sends are scheduled, not
// after they complete, so a duplicate arriving while a send is in flight
// cannot double-send.
func (d *Dispatcher) Dispatch(ev *event.Event, msg format.Message, imageURL string) bool {
	if len(d.channels) == 0 {
		logging.Debug().Msg("No channels configured, dropping notification")
		return false
	}

	if d.gate.ShouldSuppress(ev) {
		logging.Info().
			Str("title", msg.Title).
			Msg("Duplicate within cooldown window, skipping")
		return false
	}
	d.gate.MarkSent(ev)

	for _, ch := range d.channels {
		d.wg.Add(1)
		go func(ch Channel) {
			defer d.wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
			defer cancel()

			start := time.Now()
			err := ch.Send(ctx, imageURL, msg)
			metrics.DispatchDuration.WithLabelValues(ch.Name()).Observe(time.Since(start).Seconds())

			d.results <- result{channel: ch.Name(), title: msg.Title, err: err}
		}(ch)
	}
	return true
}

// Close waits for in-flight sends and stops the consumer. Call on
// shutdown.
func (d *Dispatcher) Close() {
	d.wg.Wait()
	close(d.results)
	<-d.done
}
