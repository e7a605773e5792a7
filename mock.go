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

package scoreboard

import (
	"context"
	"sync/atomic"

	"github.com/ZaparooProject/go-scoreboard/internal/syncutil"
)

const mockQueueSize = 64

// MockLink is an in-memory Link for tests. Events passed to Emit are
// delivered in order from the Listen goroutine.
type MockLink struct {
	events    chan RxEvent
	listening chan struct{}
	err       error
	mu        syncutil.Mutex
	once      atomic.Bool
	closed    atomic.Bool
}

// NewMockLink creates a new mock link.
func NewMockLink() *MockLink {
	return &MockLink{
		events:    make(chan RxEvent, mockQueueSize),
		listening: make(chan struct{}),
	}
}

// Listen implements Link.
func (m *MockLink) Listen(ctx context.Context, onEvent func(RxEvent)) error {
	if m.once.CompareAndSwap(false, true) {
		close(m.listening)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-m.events:
			if !ok {
				m.mu.Lock()
				defer m.mu.Unlock()
				return m.err
			}
			onEvent(ev)
		}
	}
}

// Emit queues data as one receive event.
func (m *MockLink) Emit(data []byte) {
	m.events <- NewRxEvent(data)
}

// Listening is closed once Listen has been called.
func (m *MockLink) Listening() <-chan struct{} {
	return m.listening
}

// Finish ends Listen after queued events are delivered. Listen returns err.
func (m *MockLink) Finish(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
	close(m.events)
}

// Close implements Link.
func (m *MockLink) Close() error {
	m.closed.Store(true)
	return nil
}

// IsClosed reports whether Close was called.
func (m *MockLink) IsClosed() bool {
	return m.closed.Load()
}

// Type implements Link.
func (*MockLink) Type() LinkType {
	return LinkMock
}

// MockAdvertiser records every advertisement it is given.
type MockAdvertiser struct {
	startErr  error
	updateErr error
	updates   chan Advertisement
	history   []Advertisement
	mu        syncutil.Mutex
	started   bool
	stopped   bool
}

// NewMockAdvertiser creates a new mock advertiser.
func NewMockAdvertiser() *MockAdvertiser {
	return &MockAdvertiser{updates: make(chan Advertisement, mockQueueSize)}
}

// Start implements Advertiser.
func (m *MockAdvertiser) Start(_ context.Context, adv Advertisement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.startErr != nil {
		return m.startErr
	}
	m.started = true
	m.history = append(m.history, adv)
	return nil
}

// Update implements Advertiser.
func (m *MockAdvertiser) Update(adv Advertisement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	m.history = append(m.history, adv)
	select {
	case m.updates <- adv:
	default:
	}
	return nil
}

// Stop implements Advertiser.
func (m *MockAdvertiser) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	return nil
}

// Updates delivers each successful Update.
func (m *MockAdvertiser) Updates() <-chan Advertisement {
	return m.updates
}

// History returns Start and Update calls in order.
func (m *MockAdvertiser) History() []Advertisement {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Advertisement, len(m.history))
	copy(out, m.history)
	return out
}

// Current returns the most recent advertisement.
func (m *MockAdvertiser) Current() (Advertisement, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.history) == 0 {
		return Advertisement{}, false
	}
	return m.history[len(m.history)-1], true
}

// SetStartError makes Start fail.
func (m *MockAdvertiser) SetStartError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startErr = err
}

// SetUpdateError makes Update fail.
func (m *MockAdvertiser) SetUpdateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateErr = err
}

// IsStarted reports whether Start succeeded and Stop has not been called.
func (m *MockAdvertiser) IsStarted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started && !m.stopped
}

// MockScanner delivers queued discoveries from its Scan goroutine.
type MockScanner struct {
	discoveries chan Discovery
	scanning    chan struct{}
	once        atomic.Bool
}

// NewMockScanner creates a new mock scanner.
func NewMockScanner() *MockScanner {
	return &MockScanner{
		discoveries: make(chan Discovery, mockQueueSize),
		scanning:    make(chan struct{}),
	}
}

// Scan implements Scanner.
func (m *MockScanner) Scan(ctx context.Context, onDiscovery func(Discovery)) error {
	if m.once.CompareAndSwap(false, true) {
		close(m.scanning)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d := <-m.discoveries:
			onDiscovery(d)
		}
	}
}

// Deliver queues a discovery.
func (m *MockScanner) Deliver(d Discovery) {
	m.discoveries <- d
}

// Scanning is closed once Scan has been called.
func (m *MockScanner) Scanning() <-chan struct{} {
	return m.scanning
}

// MockDisplay records every frame pushed to it.
type MockDisplay struct {
	err    error
	shown  chan []Color
	frames [][]Color
	mu     syncutil.Mutex
	closed bool
}

// NewMockDisplay creates a new mock display.
func NewMockDisplay() *MockDisplay {
	return &MockDisplay{shown: make(chan []Color, mockQueueSize)}
}

// Show implements Display.
func (m *MockDisplay) Show(pixels []Color) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	frame := make([]Color, len(pixels))
	copy(frame, pixels)
	m.frames = append(m.frames, frame)
	select {
	case m.shown <- frame:
	default:
	}
	return nil
}

// Close implements Display.
func (m *MockDisplay) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Shown delivers each frame as it is pushed.
func (m *MockDisplay) Shown() <-chan []Color {
	return m.shown
}

// Frames returns every pushed frame.
func (m *MockDisplay) Frames() [][]Color {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]Color, len(m.frames))
	copy(out, m.frames)
	return out
}

// SetError makes Show fail.
func (m *MockDisplay) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// MockIndicators counts indicator changes.
type MockIndicators struct {
	heartbeats  atomic.Int64
	busyCleared atomic.Int64
}

// ToggleHeartbeat implements Indicators.
func (m *MockIndicators) ToggleHeartbeat() {
	m.heartbeats.Add(1)
}

// ClearBusy implements Indicators.
func (m *MockIndicators) ClearBusy() {
	m.busyCleared.Add(1)
}

// Heartbeats returns the number of ToggleHeartbeat calls.
func (m *MockIndicators) Heartbeats() int64 {
	return m.heartbeats.Load()
}

// BusyCleared returns the number of ClearBusy calls.
func (m *MockIndicators) BusyCleared() int64 {
	return m.busyCleared.Load()
}
