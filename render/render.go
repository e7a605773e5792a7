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

// Package render turns a MatchState into pixels for the 88 LED scoreboard
// strip: four 14-segment score digits, a four pixel serving marker and two
// 14-segment set digits.
package render

import (
	"fmt"

	scoreboard "github.com/ZaparooProject/go-scoreboard"
)

// SegmentsPerDigit is the number of pixels in one digit.
const SegmentsPerDigit = 14

// digitMasks maps a decimal digit to its lit segments; bit i lights the
// pixel at offset+i.
var digitMasks = [10]uint16{
	0b00111111111111,
	0b00110000000011,
	0b11111100111100,
	0b11111100001111,
	0b11110011000011,
	0b11001111001111,
	0b11001111111111,
	0b00111100000011,
	0b11111111111111,
	0b11111111000011,
}

// DigitMask returns the segment mask for d.
func DigitMask(d int) (uint16, bool) {
	if d < 0 || d >= len(digitMasks) {
		return 0, false
	}
	return digitMasks[d], true
}

// Layout places each element on the strip by its first pixel.
type Layout struct {
	GuestOnes int
	GuestTens int
	HomeOnes  int
	HomeTens  int
	Serving   int
	GuestSet  int
	HomeSet   int
	Length    int
}

// DefaultLayout is the wiring of the reference scoreboard.
func DefaultLayout() Layout {
	return Layout{
		GuestOnes: 0,
		GuestTens: 14,
		HomeOnes:  28,
		HomeTens:  42,
		Serving:   56,
		GuestSet:  60,
		HomeSet:   74,
		Length:    88,
	}
}

// Validate reports whether every element fits on the strip.
func (l Layout) Validate() error {
	digits := map[string]int{
		"guest ones": l.GuestOnes,
		"guest tens": l.GuestTens,
		"home ones":  l.HomeOnes,
		"home tens":  l.HomeTens,
		"guest set":  l.GuestSet,
		"home set":   l.HomeSet,
	}
	for name, off := range digits {
		if off < 0 || off+SegmentsPerDigit > l.Length {
			return fmt.Errorf("%w: %s digit at %d does not fit %d pixels", scoreboard.ErrInvalidParameter, name, off, l.Length)
		}
	}
	if l.Serving < 0 || l.Serving+4 > l.Length {
		return fmt.Errorf("%w: serving marker at %d does not fit %d pixels", scoreboard.ErrInvalidParameter, l.Serving, l.Length)
	}
	return nil
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLayout overrides the default layout.
func WithLayout(l Layout) Option {
	return func(r *Renderer) { r.layout = l }
}

// WithColor sets the colour of lit segments.
func WithColor(c scoreboard.Color) Option {
	return func(r *Renderer) { r.lit = c }
}

// Renderer draws match states into a pixel buffer. It is not safe for
// concurrent use.
type Renderer struct {
	pixels []scoreboard.Color
	layout Layout
	lit    scoreboard.Color
}

// New creates a renderer.
func New(opts ...Option) (*Renderer, error) {
	r := &Renderer{layout: DefaultLayout(), lit: scoreboard.Red}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.layout.Validate(); err != nil {
		return nil, err
	}
	r.pixels = make([]scoreboard.Color, r.layout.Length)
	return r, nil
}

// Layout returns the renderer's layout.
func (r *Renderer) Layout() Layout {
	return r.layout
}

// Render draws s and returns the whole strip. The returned slice is
// reused by the next call. Values a digit cannot show are drawn blank.
func (r *Renderer) Render(s scoreboard.MatchState) []scoreboard.Color {
	r.drawNumber(r.layout.HomeTens, r.layout.HomeOnes, s.HomePoints, "home points")
	r.drawNumber(r.layout.GuestTens, r.layout.GuestOnes, s.GuestPoints, "guest points")
	r.drawDigit(r.layout.HomeSet, int(s.HomeSets), "home sets")
	r.drawDigit(r.layout.GuestSet, int(s.GuestSets), "guest sets")
	r.drawServing(s.Serving)
	return r.pixels
}

func (r *Renderer) drawNumber(tensOffset, onesOffset int, v uint8, what string) {
	r.drawDigit(tensOffset, int(v)/10, what)
	r.drawDigit(onesOffset, int(v)%10, what)
}

func (r *Renderer) drawDigit(offset, d int, what string) {
	mask, ok := DigitMask(d)
	if !ok {
		scoreboard.Debugf("render: %s digit %d out of range, blanking", what, d)
	}
	for i := range SegmentsPerDigit {
		if mask&(1<<i) != 0 {
			r.pixels[offset+i] = r.lit
		} else {
			r.pixels[offset+i] = scoreboard.Black
		}
	}
}

// drawServing lights two pixels on the serving side. The home bit wins
// if a sender sets both.
func (r *Renderer) drawServing(s scoreboard.Serving) {
	home, guest := scoreboard.Black, scoreboard.Black
	switch {
	case s&scoreboard.ServingHome != 0:
		home = r.lit
	case s&scoreboard.ServingGuest != 0:
		guest = r.lit
	}
	off := r.layout.Serving
	r.pixels[off], r.pixels[off+1] = home, home
	r.pixels[off+2], r.pixels[off+3] = guest, guest
}

// ReadDigit recovers the digit drawn at offset, or false if the segments
// match none.
func ReadDigit(pixels []scoreboard.Color, offset int) (int, bool) {
	if offset < 0 || offset+SegmentsPerDigit > len(pixels) {
		return 0, false
	}
	var mask uint16
	for i := range SegmentsPerDigit {
		if pixels[offset+i] != scoreboard.Black {
			mask |= 1 << i
		}
	}
	for d, m := range digitMasks {
		if m == mask {
			return d, true
		}
	}
	return 0, false
}

// ReadState recovers the state drawn on pixels. Fields whose digits
// cannot be read are zero; ok is false if any were.
func ReadState(pixels []scoreboard.Color, l Layout) (s scoreboard.MatchState, ok bool) {
	ok = true
	read := func(off int) uint8 {
		d, good := ReadDigit(pixels, off)
		ok = ok && good
		return uint8(d) //nolint:gosec // d is a single digit
	}
	s.HomePoints = read(l.HomeTens)*10 + read(l.HomeOnes)
	s.GuestPoints = read(l.GuestTens)*10 + read(l.GuestOnes)
	s.HomeSets = read(l.HomeSet)
	s.GuestSets = read(l.GuestSet)
	if l.Serving+4 <= len(pixels) {
		switch {
		case pixels[l.Serving] != scoreboard.Black:
			s.Serving = scoreboard.ServingHome
		case pixels[l.Serving+2] != scoreboard.Black:
			s.Serving = scoreboard.ServingGuest
		}
	}
	return s, ok
}
