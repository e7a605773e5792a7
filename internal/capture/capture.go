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

// Package capture records raw receive events to a CBOR sequence file and
// replays them as a Link. A file is a Header followed by one Entry per
// event.
package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	scoreboard "github.com/ZaparooProject/go-scoreboard"
	"github.com/ZaparooProject/go-scoreboard/internal/syncutil"
	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog/log"
)

// Version is the capture format version.
const Version = 1

// ErrBadCapture is returned for files that are not captures.
var ErrBadCapture = errors.New("not a capture file")

// Header opens every capture.
type Header struct {
	Started time.Time `cbor:"3,keyasint"`
	Link    string    `cbor:"2,keyasint"`
	Version int       `cbor:"1,keyasint"`
}

// Entry is one receive event.
type Entry struct {
	At   time.Time `cbor:"1,keyasint"`
	Data []byte    `cbor:"2,keyasint"`
}

var encMode = func() cbor.EncMode {
	em, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// Writer appends entries to a capture.
type Writer struct {
	enc    *cbor.Encoder
	closer io.Closer
	mu     syncutil.Mutex
	count  int
}

// NewWriter writes a header for link to w.
func NewWriter(w io.Writer, link scoreboard.LinkType) (*Writer, error) {
	enc := encMode.NewEncoder(w)
	h := Header{Version: Version, Link: string(link), Started: time.Now().UTC()}
	if err := enc.Encode(h); err != nil {
		return nil, fmt.Errorf("write capture header: %w", err)
	}
	cw := &Writer{enc: enc}
	if c, ok := w.(io.Closer); ok {
		cw.closer = c
	}
	return cw, nil
}

// Create starts a capture file at path.
func Create(path string, link scoreboard.LinkType) (*Writer, error) {
	f, err := os.Create(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("create capture: %w", err)
	}
	w, err := NewWriter(f, link)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return w, nil
}

// Write appends ev.
func (w *Writer) Write(ev scoreboard.RxEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	e := Entry{At: ev.At.UTC(), Data: append([]byte(nil), ev.Bytes()...)}
	if err := w.enc.Encode(e); err != nil {
		return fmt.Errorf("write capture entry: %w", err)
	}
	w.count++
	return nil
}

// Count returns the number of entries written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Close closes the underlying file, if any.
func (w *Writer) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}

// Reader iterates a capture.
type Reader struct {
	dec    *cbor.Decoder
	closer io.Closer
	Header Header
}

// NewReader reads and checks the header from r.
func NewReader(r io.Reader) (*Reader, error) {
	cr := &Reader{dec: cbor.NewDecoder(r)}
	if err := cr.dec.Decode(&cr.Header); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadCapture, err)
	}
	if cr.Header.Version != Version {
		return nil, fmt.Errorf("%w: version %d", ErrBadCapture, cr.Header.Version)
	}
	if c, ok := r.(io.Closer); ok {
		cr.closer = c
	}
	return cr, nil
}

// Open opens the capture file at path.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("open capture: %w", err)
	}
	r, err := NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return r, nil
}

// Next returns the next entry, or io.EOF.
func (r *Reader) Next() (Entry, error) {
	var e Entry
	if err := r.dec.Decode(&e); err != nil {
		if errors.Is(err, io.EOF) {
			return Entry{}, io.EOF
		}
		return Entry{}, fmt.Errorf("read capture entry: %w", err)
	}
	return e, nil
}

// Close closes the underlying file, if any.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// RecordingLink copies every event of a Link into a capture.
type RecordingLink struct {
	scoreboard.Link
	w *Writer
}

// NewRecordingLink wraps link.
func NewRecordingLink(link scoreboard.Link, w *Writer) *RecordingLink {
	return &RecordingLink{Link: link, w: w}
}

// Listen implements scoreboard.Link.
func (l *RecordingLink) Listen(ctx context.Context, onEvent func(scoreboard.RxEvent)) error {
	return l.Link.Listen(ctx, func(ev scoreboard.RxEvent) {
		if err := l.w.Write(ev); err != nil {
			log.Warn().Err(err).Msg("capture write failed")
		}
		onEvent(ev)
	})
}

// Close closes the wrapped link and the capture.
func (l *RecordingLink) Close() error {
	return errors.Join(l.Link.Close(), l.w.Close())
}

// ReplayConfig holds replay options
type ReplayConfig struct {
	// Speed scales the recorded gaps between events; 0 replays as fast
	// as possible
	Speed float64
}

// ReplayLink delivers the entries of a capture as receive events.
type ReplayLink struct {
	r      *Reader
	config ReplayConfig
}

// NewReplayLink replays r.
func NewReplayLink(r *Reader, config ReplayConfig) *ReplayLink {
	return &ReplayLink{r: r, config: config}
}

// Listen implements scoreboard.Link. It returns nil once the capture is
// exhausted.
func (l *ReplayLink) Listen(ctx context.Context, onEvent func(scoreboard.RxEvent)) error {
	var last time.Time
	for {
		e, err := l.r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if l.config.Speed > 0 && !last.IsZero() {
			gap := time.Duration(float64(e.At.Sub(last)) / l.config.Speed)
			if gap > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(gap):
				}
			}
		}
		last = e.At

		if err := ctx.Err(); err != nil {
			return err
		}
		onEvent(scoreboard.NewRxEvent(e.Data))
	}
}

// Close implements scoreboard.Link.
func (l *ReplayLink) Close() error {
	return l.r.Close()
}

// Type implements scoreboard.Link.
func (*ReplayLink) Type() scoreboard.LinkType {
	return scoreboard.LinkReplay
}
