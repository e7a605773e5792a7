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

// Package uart provides the DF2301Q serial link. Bytes are gathered into
// receive events: an event ends when the buffer is full or when the line
// has been idle for the read timeout.
package uart

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	scoreboard "github.com/ZaparooProject/go-scoreboard"
	"github.com/ZaparooProject/go-scoreboard/internal/syncutil"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// Config holds serial port options
type Config struct {
	// BaudRate of the voice module, 9600 by default
	BaudRate int
	// IdleTimeout ends a receive event when no byte arrives for this long
	IdleTimeout time.Duration
	// HistorySize is the number of receive bursts attached to read errors
	HistorySize int
}

// DefaultConfig returns the default serial configuration
func DefaultConfig() *Config {
	return &Config{
		BaudRate:    9600,
		IdleTimeout: defaultIdleTimeout(),
		HistorySize: 16,
	}
}

// defaultIdleTimeout is the shortest read timeout host serial drivers
// honour reliably. The module itself idles the line for 1.2ms between
// frames.
func defaultIdleTimeout() time.Duration {
	if runtime.GOOS == "windows" {
		return 50 * time.Millisecond
	}
	return 20 * time.Millisecond
}

// Link implements scoreboard.Link over a serial port.
type Link struct {
	port     serial.Port
	history  *scoreboard.BurstHistory
	portName string
	config   Config
	writeMu  syncutil.Mutex
	closed   atomic.Bool
}

// New opens portName. A nil config uses DefaultConfig.
func New(portName string, config *Config) (*Link, error) {
	if config == nil {
		config = DefaultConfig()
	}
	port, err := serial.Open(portName, &serial.Mode{
		BaudRate: config.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		var portErr *serial.PortError
		if errors.As(err, &portErr) && portErr.Code() == serial.PortNotFound {
			return nil, scoreboard.NewDeviceNotFoundError("open", portName)
		}
		return nil, scoreboard.NewTransportError("open", portName, err, scoreboard.ErrorTypeTransient)
	}

	link, err := NewWithPort(port, portName, config)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	return link, nil
}

// NewWithPort wraps an already open port.
func NewWithPort(port serial.Port, portName string, config *Config) (*Link, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.IdleTimeout <= 0 {
		return nil, fmt.Errorf("%w: idle timeout must be positive", scoreboard.ErrInvalidParameter)
	}
	if err := port.SetReadTimeout(config.IdleTimeout); err != nil {
		return nil, fmt.Errorf("failed to set UART read timeout: %w", err)
	}
	return &Link{
		port:     port,
		portName: portName,
		config:   *config,
		history:  scoreboard.NewBurstHistory(scoreboard.LinkUART, portName, config.HistorySize),
	}, nil
}

// Listen implements scoreboard.Link.
func (l *Link) Listen(ctx context.Context, onEvent func(scoreboard.RxEvent)) error {
	var (
		buf [scoreboard.RxBufferSize]byte
		n   int
	)
	flush := func() {
		ev := scoreboard.NewRxEvent(buf[:n])
		l.history.Add(ev)
		clear(buf[:])
		n = 0
		onEvent(ev)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		r, err := l.port.Read(buf[n:])
		if err != nil {
			if l.closed.Load() {
				return scoreboard.ErrTransportClosed
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return l.history.Wrap(l.readError(err))
		}

		if r == 0 {
			// Read timed out: the line went idle.
			if n > 0 {
				flush()
			}
			continue
		}

		n += r
		if n == len(buf) {
			flush()
		}
	}
}

func (l *Link) readError(err error) error {
	if scoreboard.IsFatal(err) {
		return scoreboard.NewTransportError("read", l.portName, err, scoreboard.ErrorTypePermanent)
	}
	return scoreboard.NewTransportReadError("read", l.portName, err)
}

// Write sends raw bytes to the module.
func (l *Link) Write(p []byte) (int, error) {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	n, err := l.port.Write(p)
	if err != nil {
		return n, scoreboard.NewTransportWriteError("write", l.portName, err)
	}
	return n, nil
}

// Close implements scoreboard.Link.
func (l *Link) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := l.port.Close(); err != nil {
		return fmt.Errorf("UART close failed: %w", err)
	}
	return nil
}

// Type implements scoreboard.Link.
func (*Link) Type() scoreboard.LinkType {
	return scoreboard.LinkUART
}

// PortName returns the device path.
func (l *Link) PortName() string {
	return l.portName
}

// PortInfo describes a serial port found on the host.
type PortInfo struct {
	Name         string
	VID          string
	PID          string
	SerialNumber string
	Product      string
	IsUSB        bool
}

// ListPorts enumerates serial ports, USB adapters first.
func ListPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}

	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		if d.IsUSB {
			ports = append(ports, portInfo(d))
		}
	}
	for _, d := range details {
		if !d.IsUSB {
			ports = append(ports, portInfo(d))
		}
	}
	return ports, nil
}

func portInfo(d *enumerator.PortDetails) PortInfo {
	return PortInfo{
		Name:         d.Name,
		IsUSB:        d.IsUSB,
		VID:          d.VID,
		PID:          d.PID,
		SerialNumber: d.SerialNumber,
		Product:      d.Product,
	}
}
