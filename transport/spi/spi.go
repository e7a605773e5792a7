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

// Package spi drives a WS2812 LED strip from an SPI MOSI pin. Each colour
// bit is stretched to three SPI bits at 2.4 MHz so the line timing matches
// the strip's 800 kHz protocol.
package spi

import (
	"fmt"
	"sync/atomic"

	scoreboard "github.com/ZaparooProject/go-scoreboard"
	"github.com/ZaparooProject/go-scoreboard/internal/syncutil"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

const (
	clockFreq = 2400 * physic.KiloHertz
	mode      = spi.Mode0

	// bytesPerPixel is 24 colour bits times 3 SPI bits each.
	bytesPerPixel = 9

	// resetBytes keeps MOSI low for 80us after the last pixel.
	resetBytes = 24

	// MaxBrightness leaves colours unscaled.
	MaxBrightness = 255
)

// Config holds strip options
type Config struct {
	// Pixels is the strip length; frames of a different length are rejected
	Pixels int
	// Brightness scales every channel, 0 to 255
	Brightness uint8
}

// DefaultConfig returns the default strip configuration
func DefaultConfig() *Config {
	return &Config{
		Pixels:     88,
		Brightness: 64,
	}
}

// Display implements scoreboard.Display.
type Display struct {
	port     spi.PortCloser
	conn     spi.Conn
	buf      []byte
	portName string
	config   Config
	mu       syncutil.Mutex
	closed   atomic.Bool
}

// New opens portName ("SPI0.0", "/dev/spidev0.0").
func New(portName string, config *Config) (*Display, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	port, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", scoreboard.ErrDisplayUnavailable, portName, err)
	}

	c, err := port.Connect(clockFreq, mode, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to connect SPI: %w", err)
	}

	d := NewWithConn(c, portName, config)
	d.port = port
	return d, nil
}

// NewWithConn drives an already connected SPI device.
func NewWithConn(c spi.Conn, portName string, config *Config) *Display {
	if config == nil {
		config = DefaultConfig()
	}
	return &Display{
		conn:     c,
		portName: portName,
		config:   *config,
		buf:      make([]byte, 0, config.Pixels*bytesPerPixel+resetBytes),
	}
}

// Show implements scoreboard.Display.
func (d *Display) Show(pixels []scoreboard.Color) error {
	if d.closed.Load() {
		return scoreboard.ErrTransportClosed
	}
	if len(pixels) != d.config.Pixels {
		return fmt.Errorf("%w: got %d pixels, strip has %d",
			scoreboard.ErrInvalidParameter, len(pixels), d.config.Pixels)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.buf = Encode(d.buf[:0], pixels, d.config.Brightness)
	if err := d.conn.Tx(d.buf, nil); err != nil {
		return scoreboard.NewTransportWriteError("show", d.portName, err)
	}
	return nil
}

// Close blanks the strip and releases the port.
func (d *Display) Close() error {
	if d.closed.Load() {
		return nil
	}
	blank := make([]scoreboard.Color, d.config.Pixels)
	_ = d.Show(blank)
	d.closed.Store(true)

	if d.port == nil {
		return nil
	}
	if err := d.port.Close(); err != nil {
		return fmt.Errorf("SPI close failed: %w", err)
	}
	return nil
}

// Encode appends the SPI bit stream for pixels to dst, followed by the
// latch gap.
func Encode(dst []byte, pixels []scoreboard.Color, brightness uint8) []byte {
	for _, p := range pixels {
		// WS2812 takes green first.
		dst = appendChannel(dst, scale(p.G, brightness))
		dst = appendChannel(dst, scale(p.R, brightness))
		dst = appendChannel(dst, scale(p.B, brightness))
	}
	for range resetBytes {
		dst = append(dst, 0)
	}
	return dst
}

func scale(v, brightness uint8) uint8 {
	return uint8(uint16(v) * (uint16(brightness) + 1) >> 8)
}

// appendChannel expands one byte MSB first: 1 becomes 110, 0 becomes 100.
func appendChannel(dst []byte, v uint8) []byte {
	var bits uint32
	for i := 7; i >= 0; i-- {
		bits <<= 3
		if v&(1<<i) != 0 {
			bits |= 0b110
		} else {
			bits |= 0b100
		}
	}
	return append(dst, byte(bits>>16), byte(bits>>8), byte(bits))
}
