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

// Package i2c provides the DF2301Q I2C link. The module exposes the last
// recognised command word in a register; the link polls it and turns each
// non-zero word into the frame the serial interface would have sent.
package i2c

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	scoreboard "github.com/ZaparooProject/go-scoreboard"
	"github.com/ZaparooProject/go-scoreboard/internal/frame"
	"github.com/ZaparooProject/go-scoreboard/internal/syncutil"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

const (
	// DF2301Q 7-bit I2C address.
	moduleAddr = 0x64

	regCmdID    = 0x02
	regPlayID   = 0x03
	regMute     = 0x04
	regVolume   = 0x05
	regWakeTime = 0x06

	clockFreq = 100 * physic.KiloHertz

	// maxVolume is the loudest speaker setting.
	maxVolume = 7
)

// Config holds I2C polling options
type Config struct {
	// PollInterval is how often the command register is read
	PollInterval time.Duration
	// MaxFailures is the number of consecutive failed reads before Listen
	// gives up
	MaxFailures int
}

// DefaultConfig returns the default I2C configuration
func DefaultConfig() *Config {
	return &Config{
		PollInterval: 50 * time.Millisecond,
		MaxFailures:  10,
	}
}

// Link implements scoreboard.Link over I2C.
type Link struct {
	dev     conn.Conn
	bus     i2c.BusCloser
	busName string
	config  Config
	mu      syncutil.Mutex
	seq     byte
	closed  atomic.Bool
}

func parseI2CPath(path string) string {
	bus, _, _ := strings.Cut(path, ":")
	return bus
}

// New opens busName ("1", "/dev/i2c-1"). A nil config uses DefaultConfig.
func New(busName string, config *Config) (*Link, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	bus, err := i2creg.Open(parseI2CPath(busName))
	if err != nil {
		return nil, scoreboard.NewTransportError("open", busName, err, scoreboard.ErrorTypePermanent)
	}
	_ = bus.SetSpeed(clockFreq)

	l := NewWithConn(&i2c.Dev{Addr: moduleAddr, Bus: bus}, busName, config)
	l.bus = bus
	return l, nil
}

// NewWithConn polls an already open device.
func NewWithConn(dev conn.Conn, busName string, config *Config) *Link {
	if config == nil {
		config = DefaultConfig()
	}
	return &Link{dev: dev, busName: busName, config: *config}
}

// Listen implements scoreboard.Link.
func (l *Link) Listen(ctx context.Context, onEvent func(scoreboard.RxEvent)) error {
	ticker := time.NewTicker(l.config.PollInterval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if l.closed.Load() {
			return scoreboard.ErrTransportClosed
		}

		id, err := l.readRegister(regCmdID)
		if err != nil {
			failures++
			scoreboard.Debugf("i2c: read command register (%d/%d): %v", failures, l.config.MaxFailures, err)
			if failures >= l.config.MaxFailures {
				return scoreboard.NewTransportReadError("read", l.busName, err)
			}
			continue
		}
		failures = 0
		if id == 0 {
			continue
		}

		l.seq++
		buf, err := frame.Encode(frame.NewCommandFrame(l.seq, scoreboard.Command(id)))
		if err != nil {
			return err
		}
		onEvent(scoreboard.NewRxEvent(buf))
	}
}

func (l *Link) readRegister(reg byte) (byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var r [1]byte
	if err := l.dev.Tx([]byte{reg}, r[:]); err != nil {
		return 0, fmt.Errorf("register 0x%02X: %w", reg, err)
	}
	return r[0], nil
}

func (l *Link) writeRegister(reg, value byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.dev.Tx([]byte{reg, value}, nil); err != nil {
		return scoreboard.NewTransportWriteError("write", l.busName, err)
	}
	return nil
}

// SetVolume sets the speaker volume, 1 to 7.
func (l *Link) SetVolume(volume byte) error {
	if volume < 1 || volume > maxVolume {
		return fmt.Errorf("%w: volume %d", scoreboard.ErrInvalidParameter, volume)
	}
	return l.writeRegister(regVolume, volume)
}

// SetMute switches the speaker off or on.
func (l *Link) SetMute(mute bool) error {
	var v byte
	if mute {
		v = 1
	}
	return l.writeRegister(regMute, v)
}

// SetWakeTime sets how long, in seconds, the module listens after its
// wake word.
func (l *Link) SetWakeTime(seconds byte) error {
	return l.writeRegister(regWakeTime, seconds)
}

// Play asks the module to speak the reply bound to cmd.
func (l *Link) Play(cmd scoreboard.Command) error {
	return l.writeRegister(regPlayID, byte(cmd))
}

// Close implements scoreboard.Link.
func (l *Link) Close() error {
	if !l.closed.CompareAndSwap(false, true) || l.bus == nil {
		return nil
	}
	if err := l.bus.Close(); err != nil {
		return fmt.Errorf("I2C close failed: %w", err)
	}
	return nil
}

// Type implements scoreboard.Link.
func (*Link) Type() scoreboard.LinkType {
	return scoreboard.LinkI2C
}
