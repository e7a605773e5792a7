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

package render

import (
	"fmt"
	"io"

	scoreboard "github.com/ZaparooProject/go-scoreboard"
	"github.com/ZaparooProject/go-scoreboard/internal/syncutil"
)

// ConsoleDisplay is a Display that prints the score it reads back from
// each frame. It stands in for the LED strip on hosts without one.
type ConsoleDisplay struct {
	w      io.Writer
	layout Layout
	mu     syncutil.Mutex
}

// NewConsoleDisplay writes one line per frame to w.
func NewConsoleDisplay(w io.Writer, l Layout) *ConsoleDisplay {
	return &ConsoleDisplay{w: w, layout: l}
}

// Show implements scoreboard.Display.
func (c *ConsoleDisplay) Show(pixels []scoreboard.Color) error {
	if len(pixels) != c.layout.Length {
		return fmt.Errorf("%w: got %d pixels, want %d", scoreboard.ErrInvalidParameter, len(pixels), c.layout.Length)
	}
	s, ok := ReadState(pixels, c.layout)

	serve := func(side scoreboard.Serving) string {
		if s.Serving == side {
			return "*"
		}
		return " "
	}
	line := fmt.Sprintf("HOME %s%02d [%d]  GUEST %s%02d [%d]",
		serve(scoreboard.ServingHome), s.HomePoints, s.HomeSets,
		serve(scoreboard.ServingGuest), s.GuestPoints, s.GuestSets)
	if !ok {
		line += "  (blank digits)"
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintln(c.w, line)
	return err
}

// Close implements scoreboard.Display.
func (*ConsoleDisplay) Close() error {
	return nil
}
