// go-pn532
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-pn532.
//
// go-pn532 is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-pn532 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-pn532; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package scoreboard

import (
	"context"
	"sync/atomic"
	"time"
)

// RxBufferSize is the capacity of one serial receive event.
const RxBufferSize = 13

// RxEvent is one burst of bytes delivered by a Link: either a full buffer
// or whatever arrived before the line went idle.
type RxEvent struct {
	At   time.Time
	Len  int
	Data [RxBufferSize]byte
}

// NewRxEvent copies up to RxBufferSize bytes of data into an event.
func NewRxEvent(data []byte) RxEvent {
	ev := RxEvent{At: time.Now()}
	ev.Len = copy(ev.Data[:], data)
	return ev
}

// Bytes returns the received bytes.
func (e *RxEvent) Bytes() []byte {
	return e.Data[:e.Len]
}

// Link delivers receive events from the voice recognition module.
type Link interface {
	// Listen blocks, calling onEvent for every receive event, until ctx is
	// cancelled or the link fails. onEvent runs on the link's goroutine and
	// must not block.
	Listen(ctx context.Context, onEvent func(RxEvent)) error

	// Close releases the underlying device
	Close() error

	// Type returns the link type
	Type() LinkType
}

// LinkType names a Link implementation.
type LinkType string

const (
	// LinkUART is the DF2301Q serial interface.
	LinkUART LinkType = "uart"
	// LinkI2C is the DF2301Q I2C register interface.
	LinkI2C LinkType = "i2c"
	// LinkReplay replays a capture file.
	LinkReplay LinkType = "replay"
	// LinkMock is the in-memory test link.
	LinkMock LinkType = "mock"
)

// Advertiser puts an Advertisement on the air.
type Advertiser interface {
	// Start begins advertising adv.
	Start(ctx context.Context, adv Advertisement) error
	// Update replaces the advertised data.
	Update(adv Advertisement) error
	// Stop ends advertising.
	Stop() error
}

// Scanner reports advertisements seen on the air.
type Scanner interface {
	// Scan blocks, calling onDiscovery for every advertisement, until ctx is
	// cancelled or scanning fails. onDiscovery must not block.
	Scan(ctx context.Context, onDiscovery func(Discovery)) error
}

// Color is one RGB pixel.
type Color struct {
	R, G, B uint8
}

var (
	// Red is the lit segment colour.
	Red = Color{R: 0xFF}
	// Black is an unlit pixel.
	Black = Color{}
)

// Display pushes a full frame of pixels to an LED strip.
type Display interface {
	Show(pixels []Color) error
	Close() error
}

// Indicators drives the broadcaster status LEDs.
type Indicators interface {
	// ToggleHeartbeat flips the activity LED, once per receive event.
	ToggleHeartbeat()
	// ClearBusy switches off the busy LEDs.
	ClearBusy()
}

// NopIndicators discards indicator changes.
type NopIndicators struct{}

// ToggleHeartbeat implements Indicators.
func (NopIndicators) ToggleHeartbeat() {}

// ClearBusy implements Indicators.
func (NopIndicators) ClearBusy() {}

// LogIndicators reports indicator changes through the debug log, for hosts
// without status LEDs.
type LogIndicators struct {
	beats atomic.Uint64
}

// ToggleHeartbeat implements Indicators.
func (l *LogIndicators) ToggleHeartbeat() {
	Debugf("indicator: heartbeat %d", l.beats.Add(1))
}

// ClearBusy implements Indicators.
func (*LogIndicators) ClearBusy() {
	Debugln("indicator: busy cleared")
}

// LinkWithRetry restarts a Link whose Listen fails with a retryable error.
type LinkWithRetry struct {
	link   Link
	config *RetryConfig
}

// NewLinkWithRetry wraps link. A nil config uses DefaultRetryConfig.
func NewLinkWithRetry(link Link, config *RetryConfig) *LinkWithRetry {
	if config == nil {
		config = DefaultRetryConfig()
	}
	return &LinkWithRetry{link: link, config: config}
}

// Listen implements Link. The attempt budget is reset whenever an event
// arrives, so only consecutive failures count against it.
func (l *LinkWithRetry) Listen(ctx context.Context, onEvent func(RxEvent)) error {
	attempts := 0
	backoff := l.config.InitialBackoff
	for {
		delivered := false
		err := l.link.Listen(ctx, func(ev RxEvent) {
			delivered = true
			onEvent(ev)
		})
		if err == nil || ctx.Err() != nil || !IsRetryable(err) {
			return err
		}

		if delivered {
			attempts = 0
			backoff = l.config.InitialBackoff
		}
		attempts++
		if attempts >= l.config.MaxAttempts {
			return err
		}
		Debugf("link %s failed (attempt %d/%d), restarting: %v", l.link.Type(), attempts, l.config.MaxAttempts, err)

		if err := sleepWithContext(ctx, calculateJitteredSleep(backoff, l.config.Jitter), err); err != nil {
			return err
		}
		backoff = calculateNextBackoff(backoff, l.config)
	}
}

// Close implements Link.
func (l *LinkWithRetry) Close() error {
	return l.link.Close()
}

// Type implements Link.
func (l *LinkWithRetry) Type() LinkType {
	return l.link.Type()
}
