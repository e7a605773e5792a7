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

package testing

import (
	"bytes"
	"errors"
	"time"

	scoreboard "github.com/ZaparooProject/go-scoreboard"
	"github.com/ZaparooProject/go-scoreboard/internal/frame"
	"github.com/ZaparooProject/go-scoreboard/internal/syncutil"
)

// ErrModuleClosed is returned by reads and writes after Close.
var ErrModuleClosed = errors.New("virtual voice module closed")

// VirtualVoiceModule simulates the serial side of a DF2301Q. Each queued
// burst is delivered as one transmission followed by an idle read that
// returns no bytes, which is how a serial port reports its read timeout.
type VirtualVoiceModule struct {
	bursts  [][]byte
	current []byte
	written bytes.Buffer
	idle    time.Duration
	mu      syncutil.Mutex
	seq     byte
	gap     bool
	closed  bool
}

// NewVirtualVoiceModule creates a module with nothing to say.
func NewVirtualVoiceModule() *VirtualVoiceModule {
	return &VirtualVoiceModule{idle: time.Millisecond}
}

// Say queues the frame the module sends after recognising cmd.
func (v *VirtualVoiceModule) Say(cmd scoreboard.Command) []byte {
	v.mu.Lock()
	v.seq++
	seq := v.seq
	v.mu.Unlock()

	buf, err := frame.Encode(frame.NewCommandFrame(seq, cmd))
	if err != nil {
		panic(err) // three data bytes always fit
	}
	v.QueueBurst(buf)
	return buf
}

// Abort queues a command frame cut one byte short.
func (v *VirtualVoiceModule) Abort(cmd scoreboard.Command) {
	buf, err := frame.Encode(frame.NewCommandFrame(0, cmd))
	if err != nil {
		panic(err)
	}
	v.QueueBurst(buf[:frame.AbortedSize])
}

// QueueBurst queues raw bytes as one transmission.
func (v *VirtualVoiceModule) QueueBurst(data []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.bursts = append(v.bursts, bytes.Clone(data))
}

// Pending reports whether bytes remain to be read.
func (v *VirtualVoiceModule) Pending() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.current) > 0 || len(v.bursts) > 0
}

// Read implements io.Reader with serial port timeout semantics.
func (v *VirtualVoiceModule) Read(p []byte) (int, error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return 0, ErrModuleClosed
	}

	if len(v.current) == 0 {
		if v.gap || len(v.bursts) == 0 {
			v.gap = false
			v.mu.Unlock()
			time.Sleep(v.idle)
			return 0, nil
		}
		v.current, v.bursts = v.bursts[0], v.bursts[1:]
	}

	n := copy(p, v.current)
	v.current = v.current[n:]
	if len(v.current) == 0 {
		v.gap = true
	}
	v.mu.Unlock()
	return n, nil
}

// Write records bytes sent to the module.
func (v *VirtualVoiceModule) Write(p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return 0, ErrModuleClosed
	}
	return v.written.Write(p)
}

// Written returns everything written so far.
func (v *VirtualVoiceModule) Written() []byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	return bytes.Clone(v.written.Bytes())
}

// Close makes further reads and writes fail.
func (v *VirtualVoiceModule) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	return nil
}
