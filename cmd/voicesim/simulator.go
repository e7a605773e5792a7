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

package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	scoreboard "github.com/ZaparooProject/go-scoreboard"
	"github.com/ZaparooProject/go-scoreboard/internal/frame"
	"github.com/ZaparooProject/go-scoreboard/internal/syncutil"
)

// statusIdle is the status word the module sends when it stops listening.
const statusIdle = 0x00

// simulator writes voice module frames to a serial port.
type simulator struct {
	w   io.Writer
	mu  syncutil.Mutex
	seq byte
}

func newSimulator(w io.Writer) *simulator {
	return &simulator{w: w}
}

func (s *simulator) send(f *frame.Frame, truncate bool) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	f.Seq = s.seq
	buf, err := frame.Encode(f)
	if err != nil {
		return nil, err
	}
	if truncate && len(buf) > frame.AbortedSize {
		buf = buf[:frame.AbortedSize]
	}
	if _, err := s.w.Write(buf); err != nil {
		return nil, fmt.Errorf("write frame: %w", err)
	}
	return buf, nil
}

// Say sends the command frame for cmd.
func (s *simulator) Say(cmd scoreboard.Command) ([]byte, error) {
	return s.send(frame.NewCommandFrame(0, cmd), false)
}

// Abort sends the command frame for cmd cut one byte short, as when the
// module is interrupted mid-frame.
func (s *simulator) Abort(cmd scoreboard.Command) ([]byte, error) {
	return s.send(frame.NewCommandFrame(0, cmd), true)
}

// Status sends an idle status frame.
func (s *simulator) Status() ([]byte, error) {
	return s.send(frame.NewStatusFrame(0, statusIdle), false)
}

// Raw sends hex-encoded bytes unchanged.
func (s *simulator) Raw(args []string) ([]byte, error) {
	buf, err := hex.DecodeString(strings.Join(args, ""))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", scoreboard.ErrInvalidParameter, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(buf); err != nil {
		return nil, fmt.Errorf("write frame: %w", err)
	}
	return buf, nil
}

// hexWriter prints each write as a hex line, for runs without a port.
type hexWriter struct {
	w io.Writer
}

func (h hexWriter) Write(p []byte) (int, error) {
	if _, err := fmt.Fprintf(h.w, "% X\n", p); err != nil {
		return 0, err
	}
	return len(p), nil
}
