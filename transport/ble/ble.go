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

// Package ble puts the scoreboard on the air with the host Bluetooth
// adapter: the broadcaster side advertises, the observer side scans.
package ble

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	scoreboard "github.com/ZaparooProject/go-scoreboard"
	"github.com/ZaparooProject/go-scoreboard/internal/syncutil"
	"github.com/ZaparooProject/go-scoreboard/pkg/advdata"
	"github.com/rs/zerolog/log"
	"tinygo.org/x/bluetooth"
)

// Radio owns one Bluetooth adapter. Advertiser and Scanner share it.
type Radio struct {
	adapter *bluetooth.Adapter
	mu      syncutil.Mutex
	enabled bool
}

// NewRadio wraps the default adapter.
func NewRadio() *Radio {
	return &Radio{adapter: bluetooth.DefaultAdapter}
}

func (r *Radio) enable() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.enabled {
		return nil
	}
	if err := r.adapter.Enable(); err != nil {
		return fmt.Errorf("%w: %w", scoreboard.ErrRadioUnavailable, err)
	}
	r.enabled = true
	return nil
}

// Advertiser implements scoreboard.Advertiser.
type Advertiser struct {
	radio *Radio
	adv   *bluetooth.Advertisement
	mu    syncutil.Mutex
}

// NewAdvertiser returns an advertiser on r.
func NewAdvertiser(r *Radio) *Advertiser {
	return &Advertiser{radio: r}
}

// Start implements scoreboard.Advertiser.
func (a *Advertiser) Start(_ context.Context, adv scoreboard.Advertisement) error {
	if err := a.radio.enable(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.adv = a.radio.adapter.DefaultAdvertisement()
	if err := a.adv.Configure(Options(adv)); err != nil {
		return fmt.Errorf("configure advertisement: %w", err)
	}
	if err := a.adv.Start(); err != nil {
		return fmt.Errorf("start advertising: %w", err)
	}
	log.Info().Str("name", adv.Name).Stringer("payload", adv.Payload).Msg("advertising started")
	return nil
}

// Update implements scoreboard.Advertiser. The host stack has no in-place
// data update, so the advertisement is restarted with the new options.
func (a *Advertiser) Update(adv scoreboard.Advertisement) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.adv == nil {
		return scoreboard.ErrTransportNotReady
	}
	if err := a.adv.Stop(); err != nil {
		return fmt.Errorf("stop advertising: %w", err)
	}
	if err := a.adv.Configure(Options(adv)); err != nil {
		return fmt.Errorf("configure advertisement: %w", err)
	}
	if err := a.adv.Start(); err != nil {
		return fmt.Errorf("restart advertising: %w", err)
	}
	return nil
}

// Stop implements scoreboard.Advertiser.
func (a *Advertiser) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.adv == nil {
		return nil
	}
	err := a.adv.Stop()
	a.adv = nil
	if err != nil {
		return fmt.Errorf("stop advertising: %w", err)
	}
	return nil
}

// Options converts adv to adapter options. The advertising type is the
// adapter default; the scan response record has no field here and is
// left out.
func Options(adv scoreboard.Advertisement) bluetooth.AdvertisementOptions {
	return bluetooth.AdvertisementOptions{
		LocalName: adv.Name,
		Interval:  bluetooth.NewDuration(adv.Interval),
		ManufacturerData: []bluetooth.ManufacturerDataElement{{
			CompanyID: adv.Payload.CompanyID(),
			Data:      append([]byte(nil), adv.Payload[2:]...),
		}},
	}
}

// Scanner implements scoreboard.Scanner.
type Scanner struct {
	radio    *Radio
	scanning atomic.Bool
}

// NewScanner returns a scanner on r.
func NewScanner(r *Radio) *Scanner {
	return &Scanner{radio: r}
}

// Scan implements scoreboard.Scanner.
func (s *Scanner) Scan(ctx context.Context, onDiscovery func(scoreboard.Discovery)) error {
	if err := s.radio.enable(); err != nil {
		return err
	}
	if !s.scanning.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: scan already running", scoreboard.ErrTransportNotReady)
	}
	defer s.scanning.Store(false)

	stop := context.AfterFunc(ctx, func() {
		if err := s.radio.adapter.StopScan(); err != nil {
			log.Debug().Err(err).Msg("stop scan")
		}
	})
	defer stop()

	err := s.radio.adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
		onDiscovery(Discovery(result.Address.String(), result.RSSI, result))
	})
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("%w: scan: %w", scoreboard.ErrRadioUnavailable, err)
	}
	return nil
}

// Payload is the part of a scan result Discovery reads.
type Payload interface {
	LocalName() string
	ManufacturerData() []bluetooth.ManufacturerDataElement
	Bytes() []byte
}

// Discovery converts a scan result. The raw advertising data is used when
// the stack exposes it so record order is kept; otherwise the name is
// placed before the manufacturer data, which is how the broadcaster lays
// them out.
func Discovery(address string, rssi int16, p Payload) scoreboard.Discovery {
	d := scoreboard.Discovery{At: time.Now(), Address: address, RSSI: rssi}

	if raw := p.Bytes(); len(raw) > 0 {
		records, err := advdata.Parse(raw)
		if err != nil {
			log.Debug().Err(err).Str("address", address).Msg("malformed advertisement")
		}
		d.Records = records
		return d
	}

	if name := p.LocalName(); name != "" {
		d.Records = append(d.Records, advdata.CompleteName(name))
	}
	for _, m := range p.ManufacturerData() {
		d.Records = append(d.Records, advdata.ManufacturerData(m.CompanyID, m.Data))
	}
	return d
}
