// Copyright 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package broadcaster runs the scoreboard broadcaster node: it listens to
// the voice module, applies recognised commands to the match and keeps the
// advertised payload in step with the match state.
package broadcaster

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	scoreboard "github.com/ZaparooProject/go-scoreboard"
	"github.com/ZaparooProject/go-scoreboard/internal/frame"
	"github.com/ZaparooProject/go-scoreboard/internal/syncutil"
	"github.com/rs/zerolog/log"
)

// ErrAlreadyRunning is returned by Run when the broadcaster is running.
var ErrAlreadyRunning = errors.New("broadcaster already running")

// Metrics tracks operational counters for a Broadcaster
type Metrics struct {
	EventsReceived     int64 // Receive events of any length
	FramesAccepted     int64 // Full frames that passed validation
	FramesDropped      int64 // Full frames rejected by validation
	FramesReplaced     int64 // Full frames overwritten before processing
	CommandsApplied    int64 // Known command words applied to the match
	ChecksumMismatches int64 // Accepted frames with a bad checksum
	UpdateErrors       int64 // Failed advertiser updates
}

// Option configures a Broadcaster.
type Option func(*Broadcaster)

// WithIndicators drives status LEDs from receive events.
func WithIndicators(i scoreboard.Indicators) Option {
	return func(b *Broadcaster) { b.indicators = i }
}

// WithRecorder reports counters to r.
func WithRecorder(r scoreboard.Recorder) Option {
	return func(b *Broadcaster) { b.recorder = r }
}

// WithMatch uses m instead of a fresh match.
func WithMatch(m *scoreboard.Match) Option {
	return func(b *Broadcaster) { b.match = m }
}

// Broadcaster owns the match state of one scoreboard.
//
// The link goroutine only classifies events and hands full frames over
// through a single-slot mailbox; decoding, state changes and advertiser
// updates all happen on the Run goroutine. A frame that arrives before the
// previous one was processed replaces it.
type Broadcaster struct {
	link       scoreboard.Link
	advertiser scoreboard.Advertiser
	indicators scoreboard.Indicators
	recorder   scoreboard.Recorder
	match      *scoreboard.Match
	config     *Config
	pending    *syncutil.Slot[scoreboard.RxEvent]
	publishMu  syncutil.Mutex
	running    atomic.Bool

	eventsReceived     atomic.Int64
	framesAccepted     atomic.Int64
	framesDropped      atomic.Int64
	framesReplaced     atomic.Int64
	commandsApplied    atomic.Int64
	checksumMismatches atomic.Int64
	updateErrors       atomic.Int64
}

// New creates a broadcaster. A nil config uses DefaultConfig.
func New(link scoreboard.Link, advertiser scoreboard.Advertiser, config *Config, opts ...Option) *Broadcaster {
	if config == nil {
		config = DefaultConfig()
	}
	b := &Broadcaster{
		link:       link,
		advertiser: advertiser,
		indicators: scoreboard.NopIndicators{},
		recorder:   scoreboard.NopRecorder{},
		match:      scoreboard.NewMatch(),
		config:     config,
		pending:    syncutil.NewSlot[scoreboard.RxEvent](),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run starts advertising the current state and processes link events until
// ctx is cancelled or the link stops. A link that ends without error (a
// finished replay) makes Run return nil.
func (b *Broadcaster) Run(ctx context.Context) error {
	if !b.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer b.running.Store(false)

	if err := b.advertiser.Start(ctx, b.advertisement(b.match.State())); err != nil {
		return fmt.Errorf("start advertising: %w", err)
	}
	defer func() {
		if err := b.advertiser.Stop(); err != nil {
			log.Warn().Err(err).Msg("stop advertising")
		}
	}()
	log.Info().Str("link", string(b.link.Type())).Str("name", b.config.Name).Msg("broadcaster started")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	linkDone := make(chan error, 1)
	go func() {
		linkDone <- b.link.Listen(ctx, b.handleEvent)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-b.pending.C():
			b.process(ev)
		case err := <-linkDone:
			if ev, ok := b.pending.TryTake(); ok {
				b.process(ev)
			}
			if err != nil {
				return fmt.Errorf("link %s: %w", b.link.Type(), err)
			}
			log.Info().Msg("link finished")
			return nil
		}
	}
}

// handleEvent runs on the link goroutine and must not block.
func (b *Broadcaster) handleEvent(ev scoreboard.RxEvent) {
	b.eventsReceived.Add(1)
	b.indicators.ToggleHeartbeat()

	kind := frame.Classify(ev.Len)
	b.recorder.FrameReceived(kind.String())
	switch kind {
	case frame.KindFull:
		if b.pending.Put(ev) {
			b.framesReplaced.Add(1)
			scoreboard.Debugf("broadcaster: unprocessed frame replaced")
		}
	case frame.KindAborted:
		b.indicators.ClearBusy()
	case frame.KindOther:
		scoreboard.Debugf("broadcaster: ignoring %d byte event", ev.Len)
	}
}

// process reads one full event and republishes the state.
func (b *Broadcaster) process(ev scoreboard.RxEvent) {
	f, err := frame.Inspect(ev.Bytes())
	if err == nil && !f.ChecksumValid() {
		if b.config.StrictChecksum {
			err = scoreboard.NewFrameError("checksum", scoreboard.ErrChecksumMismatch, ev.Bytes())
		} else {
			b.checksumMismatches.Add(1)
			scoreboard.Debugf("broadcaster: accepting frame with bad checksum: %s", f)
		}
	}
	if err != nil {
		b.framesDropped.Add(1)
		b.recorder.FrameDropped(scoreboard.DropReason(err))
		scoreboard.Debugf("broadcaster: dropped frame: %v", err)
		return
	}
	b.framesAccepted.Add(1)

	switch f.Selector {
	case frame.SelectorCommand:
		b.apply(scoreboard.Command(f.CommandWord))
	case frame.SelectorStatus:
		b.indicators.ClearBusy()
	}

	if err := b.publish(); err != nil {
		log.Warn().Err(err).Msg("advertiser update failed")
	}
}

func (b *Broadcaster) apply(cmd scoreboard.Command) scoreboard.MatchState {
	state := b.match.Apply(cmd)
	if cmd.Known() {
		b.commandsApplied.Add(1)
		b.recorder.CommandApplied(cmd)
		log.Debug().Stringer("command", cmd).Stringer("state", state).Msg("command applied")
	} else {
		scoreboard.Debugf("broadcaster: ignoring command word %s", cmd)
	}
	return state
}

// publish pushes the current state to the advertiser.
func (b *Broadcaster) publish() error {
	b.publishMu.Lock()
	defer b.publishMu.Unlock()

	err := b.advertiser.Update(b.advertisement(b.match.State()))
	b.recorder.AdvertisementUpdated(err)
	if err != nil {
		b.updateErrors.Add(1)
		return fmt.Errorf("update advertisement: %w", err)
	}
	return nil
}

func (b *Broadcaster) advertisement(s scoreboard.MatchState) scoreboard.Advertisement {
	return scoreboard.Advertisement{
		Name:     b.config.Name,
		Interval: b.config.AdvertisingInterval,
		Payload:  scoreboard.Encode(s),
	}
}

// Inject applies cmd as if it had been spoken and republishes the state.
func (b *Broadcaster) Inject(cmd scoreboard.Command) (scoreboard.MatchState, error) {
	if !cmd.Known() {
		return b.match.State(), fmt.Errorf("%w: command %s", scoreboard.ErrInvalidParameter, cmd)
	}
	state := b.apply(cmd)
	return state, b.publish()
}

// State returns the current match state.
func (b *Broadcaster) State() scoreboard.MatchState {
	return b.match.State()
}

// GetMetrics returns current operational metrics
func (b *Broadcaster) GetMetrics() Metrics {
	return Metrics{
		EventsReceived:     b.eventsReceived.Load(),
		FramesAccepted:     b.framesAccepted.Load(),
		FramesDropped:      b.framesDropped.Load(),
		FramesReplaced:     b.framesReplaced.Load(),
		CommandsApplied:    b.commandsApplied.Load(),
		ChecksumMismatches: b.checksumMismatches.Load(),
		UpdateErrors:       b.updateErrors.Load(),
	}
}
