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

// Package observer runs the scoreboard observer node: it scans for the
// broadcaster's advertisements and redraws the LED strip whenever the
// advertised payload changes.
package observer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	scoreboard "github.com/ZaparooProject/go-scoreboard"
	"github.com/ZaparooProject/go-scoreboard/internal/syncutil"
	"github.com/ZaparooProject/go-scoreboard/render"
	"github.com/rs/zerolog/log"
)

// ErrAlreadyRunning is returned by Run when the observer is running.
var ErrAlreadyRunning = errors.New("observer already running")

// Metrics tracks operational counters for an Observer
type Metrics struct {
	Discoveries  int64 // Advertisements seen
	Matched      int64 // Advertisements carrying a scoreboard payload
	Changes      int64 // Payloads that differed from the snapshot
	Renders      int64 // Frames pushed to the display
	RenderErrors int64 // Failed display pushes
	Suppressed   int64 // Payloads identical to the snapshot
}

// Option configures an Observer.
type Option func(*Observer)

// WithRecorder reports counters to r.
func WithRecorder(r scoreboard.Recorder) Option {
	return func(o *Observer) { o.recorder = r }
}

// WithRenderer uses r instead of the default renderer.
func WithRenderer(r *render.Renderer) Option {
	return func(o *Observer) { o.renderer = r }
}

// Observer mirrors the broadcaster's score onto a Display.
//
// The scan callback only compares a payload against the last rendered
// snapshot and hands changes over through a single-slot mailbox. Rendering
// happens on the Run goroutine, which updates the snapshot after each
// push, so a burst of changes collapses into a render of the newest one.
type Observer struct {
	scanner  scoreboard.Scanner
	display  scoreboard.Display
	renderer *render.Renderer
	recorder scoreboard.Recorder
	config   *Config
	pending  *syncutil.Slot[scoreboard.Payload]
	snapMu   syncutil.RWMutex
	snapshot scoreboard.Payload
	running  atomic.Bool

	discoveries  atomic.Int64
	matched      atomic.Int64
	changes      atomic.Int64
	renders      atomic.Int64
	renderErrors atomic.Int64
	suppressed   atomic.Int64
}

// New creates an observer. A nil config uses DefaultConfig.
func New(scanner scoreboard.Scanner, display scoreboard.Display, config *Config, opts ...Option) (*Observer, error) {
	if config == nil {
		config = DefaultConfig()
	}
	o := &Observer{
		scanner:  scanner,
		display:  display,
		recorder: scoreboard.NopRecorder{},
		config:   config,
		pending:  syncutil.NewSlot[scoreboard.Payload](),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.renderer == nil {
		r, err := render.New()
		if err != nil {
			return nil, err
		}
		o.renderer = r
	}
	return o, nil
}

// Run scans and renders until ctx is cancelled or the scanner fails.
func (o *Observer) Run(ctx context.Context) error {
	if !o.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer o.running.Store(false)

	if o.config.RenderOnStart {
		if err := o.show(scoreboard.MatchState{}); err != nil {
			return fmt.Errorf("initial render: %w", err)
		}
	}
	log.Info().Str("name", o.config.NamePrefix).Msg("observer scanning")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	scanDone := make(chan error, 1)
	go func() {
		scanDone <- o.scanner.Scan(ctx, o.HandleDiscovery)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case p := <-o.pending.C():
			o.render(p)
		case err := <-scanDone:
			if p, ok := o.pending.TryTake(); ok {
				o.render(p)
			}
			if err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			return nil
		}
	}
}

// HandleDiscovery is the scan callback. It must not block.
func (o *Observer) HandleDiscovery(d scoreboard.Discovery) {
	o.discoveries.Add(1)
	p, ok := ExtractPayload(d.Records, o.config.NamePrefix)
	o.recorder.AdvertisementSeen(ok)
	if !ok {
		return
	}
	o.matched.Add(1)

	if p == o.Snapshot() {
		return
	}
	o.changes.Add(1)
	o.pending.Put(p)
}

func (o *Observer) render(p scoreboard.Payload) {
	if p == o.Snapshot() {
		o.suppressed.Add(1)
		o.recorder.RenderSuppressed()
		return
	}

	state := p.State()
	if err := o.show(state); err != nil {
		log.Warn().Err(err).Msg("display update failed")
		return
	}

	o.snapMu.Lock()
	o.snapshot = p
	o.snapMu.Unlock()
	log.Debug().Stringer("state", state).Msg("scoreboard updated")
}

func (o *Observer) show(s scoreboard.MatchState) error {
	err := o.display.Show(o.renderer.Render(s))
	o.recorder.RenderCompleted(err)
	if err != nil {
		o.renderErrors.Add(1)
		return fmt.Errorf("show: %w", err)
	}
	o.renders.Add(1)
	return nil
}

// Snapshot returns the last payload pushed to the display. It is all zero
// until the first advertisement is rendered.
func (o *Observer) Snapshot() scoreboard.Payload {
	o.snapMu.RLock()
	defer o.snapMu.RUnlock()
	return o.snapshot
}

// State returns the state of the last rendered payload.
func (o *Observer) State() scoreboard.MatchState {
	return o.Snapshot().State()
}

// GetMetrics returns current operational metrics
func (o *Observer) GetMetrics() Metrics {
	return Metrics{
		Discoveries:  o.discoveries.Load(),
		Matched:      o.matched.Load(),
		Changes:      o.changes.Load(),
		Renders:      o.renders.Load(),
		RenderErrors: o.renderErrors.Load(),
		Suppressed:   o.suppressed.Load(),
	}
}
