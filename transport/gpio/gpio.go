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

// Package gpio drives the broadcaster's status LEDs.
package gpio

import (
	"context"
	"fmt"
	"time"

	scoreboard "github.com/ZaparooProject/go-scoreboard"
	"github.com/ZaparooProject/go-scoreboard/internal/syncutil"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Config names the LED pins. Empty names are skipped.
type Config struct {
	// Heartbeat toggles on every receive event
	Heartbeat string
	// Run blinks while the node is alive
	Run string
	// Busy pins are switched off when the voice module reports idle
	Busy []string
	// RunInterval is the run LED blink period
	RunInterval time.Duration
}

// DefaultConfig returns the default pin assignment
func DefaultConfig() *Config {
	return &Config{
		Heartbeat:   "GPIO27",
		Run:         "GPIO17",
		Busy:        []string{"GPIO22"},
		RunInterval: time.Second,
	}
}

// Indicators implements scoreboard.Indicators on GPIO output pins.
type Indicators struct {
	heartbeat gpio.PinOut
	run       gpio.PinOut
	busy      []gpio.PinOut
	interval  time.Duration
	mu        syncutil.Mutex
	beat      gpio.Level
}

// New resolves the configured pins by name.
func New(config *Config) (*Indicators, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	lookup := func(name string) (gpio.PinOut, error) {
		if name == "" {
			return nil, nil
		}
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("%w: gpio pin %s", scoreboard.ErrDeviceNotFound, name)
		}
		return p, nil
	}

	hb, err := lookup(config.Heartbeat)
	if err != nil {
		return nil, err
	}
	run, err := lookup(config.Run)
	if err != nil {
		return nil, err
	}
	busy := make([]gpio.PinOut, 0, len(config.Busy))
	for _, name := range config.Busy {
		p, err := lookup(name)
		if err != nil {
			return nil, err
		}
		busy = append(busy, p)
	}
	return NewWithPins(hb, run, busy, config.RunInterval)
}

// NewWithPins wraps already resolved pins. Nil pins are skipped. All pins
// start low.
func NewWithPins(heartbeat, run gpio.PinOut, busy []gpio.PinOut, interval time.Duration) (*Indicators, error) {
	ind := &Indicators{
		heartbeat: heartbeat,
		run:       run,
		busy:      busy,
		interval:  interval,
	}
	for _, p := range ind.pins() {
		if err := p.Out(gpio.Low); err != nil {
			return nil, fmt.Errorf("gpio %s: %w", p, err)
		}
	}
	return ind, nil
}

func (ind *Indicators) pins() []gpio.PinOut {
	all := make([]gpio.PinOut, 0, len(ind.busy)+2)
	for _, p := range append([]gpio.PinOut{ind.heartbeat, ind.run}, ind.busy...) {
		if p != nil {
			all = append(all, p)
		}
	}
	return all
}

// ToggleHeartbeat implements scoreboard.Indicators.
func (ind *Indicators) ToggleHeartbeat() {
	if ind.heartbeat == nil {
		return
	}
	ind.mu.Lock()
	defer ind.mu.Unlock()

	ind.beat = !ind.beat
	if err := ind.heartbeat.Out(ind.beat); err != nil {
		scoreboard.Debugf("gpio: heartbeat: %v", err)
	}
}

// ClearBusy implements scoreboard.Indicators.
func (ind *Indicators) ClearBusy() {
	for _, p := range ind.busy {
		if p == nil {
			continue
		}
		if err := p.Out(gpio.Low); err != nil {
			scoreboard.Debugf("gpio: clear busy %s: %v", p, err)
		}
	}
}

// SetBusy lights the busy pins.
func (ind *Indicators) SetBusy() {
	for _, p := range ind.busy {
		if p != nil {
			_ = p.Out(gpio.High)
		}
	}
}

// Blink toggles the run LED until ctx is done, then leaves it off.
func (ind *Indicators) Blink(ctx context.Context) {
	if ind.run == nil || ind.interval <= 0 {
		return
	}
	ticker := time.NewTicker(ind.interval)
	defer ticker.Stop()

	level := gpio.High
	_ = ind.run.Out(level)
	for {
		select {
		case <-ctx.Done():
			_ = ind.run.Out(gpio.Low)
			return
		case <-ticker.C:
			level = !level
			_ = ind.run.Out(level)
		}
	}
}

// Close switches every LED off.
func (ind *Indicators) Close() error {
	for _, p := range ind.pins() {
		if err := p.Out(gpio.Low); err != nil {
			return fmt.Errorf("gpio %s: %w", p, err)
		}
	}
	return nil
}
