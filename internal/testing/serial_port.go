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

package testing

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"go.bug.st/serial"
)

var errPortClosed = errors.New("port is closed")

// SerialPort adapts an io.ReadWriter to serial.Port.
type SerialPort struct {
	rw          io.ReadWriter
	mode        *serial.Mode
	readTimeout time.Duration
	closed      atomic.Bool
}

// NewSerialPort wraps rw.
func NewSerialPort(rw io.ReadWriter) *SerialPort {
	return &SerialPort{rw: rw, readTimeout: serial.NoTimeout}
}

// SetMode records the requested mode.
func (s *SerialPort) SetMode(mode *serial.Mode) error {
	s.mode = mode
	return nil
}

// Mode returns the last mode set.
func (s *SerialPort) Mode() *serial.Mode {
	return s.mode
}

func (s *SerialPort) Read(p []byte) (int, error) {
	if s.closed.Load() {
		return 0, errPortClosed
	}
	n, err := s.rw.Read(p)
	if err != nil {
		return n, fmt.Errorf("mock read: %w", err)
	}
	return n, nil
}

func (s *SerialPort) Write(p []byte) (int, error) {
	if s.closed.Load() {
		return 0, errPortClosed
	}
	n, err := s.rw.Write(p)
	if err != nil {
		return n, fmt.Errorf("mock write: %w", err)
	}
	return n, nil
}

func (*SerialPort) Drain() error { return nil }
func (*SerialPort) ResetInputBuffer() error { return nil }
func (*SerialPort) ResetOutputBuffer() error { return nil }
func (*SerialPort) SetDTR(bool) error { return nil }
func (*SerialPort) SetRTS(bool) error { return nil }
func (*SerialPort) Break(time.Duration) error { return nil }

func (*SerialPort) GetModemStatusBits() (*serial.ModemStatusBits, error) {
	return &serial.ModemStatusBits{}, nil
}

// SetReadTimeout records the timeout.
func (s *SerialPort) SetReadTimeout(t time.Duration) error {
	s.readTimeout = t
	return nil
}

// ReadTimeout returns the last timeout set.
func (s *SerialPort) ReadTimeout() time.Duration {
	return s.readTimeout
}

func (s *SerialPort) Close() error {
	s.closed.Store(true)
	return nil
}

var _ serial.Port = (*SerialPort)(nil)
