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

package capture

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	scoreboard "github.com/ZaparooProject/go-scoreboard"
	"github.com/ZaparooProject/go-scoreboard/internal/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commandBytes(t *testing.T, seq byte, cmd scoreboard.Command) []byte {
	t.Helper()
	buf, err := frame.Encode(frame.NewCommandFrame(seq, cmd))
	require.NoError(t, err)
	return buf
}

func TestWriterReader_RoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w, err := NewWriter(&buf, scoreboard.LinkUART)
	require.NoError(t, err)

	full := scoreboard.NewRxEvent(commandBytes(t, 1, scoreboard.CmdHomePointUp))
	aborted := scoreboard.NewRxEvent(full.Bytes()[:frame.AbortedSize])
	require.NoError(t, w.Write(full))
	require.NoError(t, w.Write(aborted))
	assert.Equal(t, 2, w.Count())
	require.NoError(t, w.Close())

	r, err := NewReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, Version, r.Header.Version)
	assert.Equal(t, string(scoreboard.LinkUART), r.Header.Link)

	e, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, full.Bytes(), e.Data)
	assert.True(t, e.At.Equal(full.At))

	e, err = r.Next()
	require.NoError(t, err)
	assert.Len(t, e.Data, frame.AbortedSize)

	_, err = r.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestNewReader_RejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := NewReader(bytes.NewReader([]byte{0xFF, 0x00}))
	require.ErrorIs(t, err, ErrBadCapture)

	var buf bytes.Buffer
	require.NoError(t, encMode.NewEncoder(&buf).Encode(Header{Version: 99}))
	_, err = NewReader(&buf)
	require.ErrorIs(t, err, ErrBadCapture)
}

func TestRecordThenReplay(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.cbor")
	w, err := Create(path, scoreboard.LinkMock)
	require.NoError(t, err)

	mock := scoreboard.NewMockLink()
	rec := NewRecordingLink(mock, w)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan scoreboard.RxEvent, 4)
	done := make(chan error, 1)
	go func() { done <- rec.Listen(ctx, func(ev scoreboard.RxEvent) { got <- ev }) }()
	<-mock.Listening()

	sent := [][]byte{
		commandBytes(t, 1, scoreboard.CmdHomePointUp),
		commandBytes(t, 2, scoreboard.CmdGuestServing),
	}
	for _, b := range sent {
		mock.Emit(b)
		<-got
	}
	mock.Finish(nil)
	require.NoError(t, <-done)
	require.NoError(t, rec.Close())
	assert.True(t, mock.IsClosed())

	r, err := Open(path)
	require.NoError(t, err)
	replay := NewReplayLink(r, ReplayConfig{})
	assert.Equal(t, scoreboard.LinkReplay, replay.Type())

	var replayed [][]byte
	err = replay.Listen(context.Background(), func(ev scoreboard.RxEvent) {
		replayed = append(replayed, append([]byte(nil), ev.Bytes()...))
	})
	require.NoError(t, err)
	require.NoError(t, replay.Close())
	assert.Equal(t, sent, replayed)
}

func TestReplay_HonoursSpeedAndCancel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w, err := NewWriter(&buf, scoreboard.LinkUART)
	require.NoError(t, err)

	start := time.Now()
	for i, gap := range []time.Duration{0, time.Hour} {
		ev := scoreboard.NewRxEvent(commandBytes(t, byte(i), scoreboard.CmdReset))
		ev.At = start.Add(gap)
		require.NoError(t, w.Write(ev))
	}

	r, err := NewReader(&buf)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	n := 0
	err = NewReplayLink(r, ReplayConfig{Speed: 1}).Listen(ctx, func(scoreboard.RxEvent) {
		n++
		cancel()
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, n)
}
