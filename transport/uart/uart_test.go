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

package uart

import (
	"context"
	"errors"
	"io"
	"syscall"
	"testing"
	"time"

	scoreboard "github.com/ZaparooProject/go-scoreboard"
	"github.com/ZaparooProject/go-scoreboard/internal/frame"
	virt "github.com/ZaparooProject/go-scoreboard/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 2 * time.Second

func newTestLink(t *testing.T, rw io.ReadWriter) (*Link, *virt.SerialPort) {
	t.Helper()
	port := virt.NewSerialPort(rw)
	link, err := NewWithPort(port, "/dev/ttyTEST", nil)
	require.NoError(t, err)
	return link, port
}

// collect runs Listen until want events arrive.
func collect(t *testing.T, link *Link, want int) []scoreboard.RxEvent {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan scoreboard.RxEvent, want)
	done := make(chan error, 1)
	go func() {
		done <- link.Listen(ctx, func(ev scoreboard.RxEvent) { events <- ev })
	}()

	var got []scoreboard.RxEvent
	for len(got) < want {
		select {
		case ev := <-events:
			got = append(got, ev)
		case err := <-done:
			t.Fatalf("Listen returned early: %v", err)
		case <-time.After(waitTimeout):
			t.Fatalf("got %d of %d events", len(got), want)
		}
	}
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	return got
}

func TestNewWithPort_SetsIdleTimeout(t *testing.T) {
	t.Parallel()

	_, port := newTestLink(t, virt.NewVirtualVoiceModule())
	assert.Equal(t, DefaultConfig().IdleTimeout, port.ReadTimeout())

	_, err := NewWithPort(port, "x", &Config{})
	require.ErrorIs(t, err, scoreboard.ErrInvalidParameter)
}

func TestListen_FullFrame(t *testing.T) {
	t.Parallel()

	module := virt.NewVirtualVoiceModule()
	want := module.Say(scoreboard.CmdHomePointUp)
	link, _ := newTestLink(t, module)

	events := collect(t, link, 1)
	assert.Equal(t, frame.Size, events[0].Len)
	assert.Equal(t, want, events[0].Bytes())
}

func TestListen_AbortedFrameFlushedOnIdle(t *testing.T) {
	t.Parallel()

	module := virt.NewVirtualVoiceModule()
	module.Abort(scoreboard.CmdGuestPointUp)
	module.Say(scoreboard.CmdGuestPointUp)
	link, _ := newTestLink(t, module)

	events := collect(t, link, 2)
	assert.Equal(t, frame.AbortedSize, events[0].Len)
	assert.Equal(t, frame.Size, events[1].Len)
}

func TestListen_LongBurstSplitsAtBufferSize(t *testing.T) {
	t.Parallel()

	module := virt.NewVirtualVoiceModule()
	burst := make([]byte, scoreboard.RxBufferSize+4)
	for i := range burst {
		burst[i] = byte(i)
	}
	module.QueueBurst(burst)
	link, _ := newTestLink(t, module)

	events := collect(t, link, 2)
	assert.Equal(t, burst[:scoreboard.RxBufferSize], events[0].Bytes())
	assert.Equal(t, burst[scoreboard.RxBufferSize:], events[1].Bytes())
}

func TestListen_FragmentedReads(t *testing.T) {
	t.Parallel()

	module := virt.NewVirtualVoiceModule()
	var want [][]byte
	for _, cmd := range []scoreboard.Command{scoreboard.CmdHomeSetUp, scoreboard.CmdGuestSetUp, scoreboard.CmdReset} {
		want = append(want, module.Say(cmd))
	}
	link, _ := newTestLink(t, virt.NewJitteryConnection(module, virt.JitterConfig{FragmentReads: true, Seed: 7}))

	events := collect(t, link, len(want))
	for i, ev := range events {
		assert.Equal(t, want[i], ev.Bytes(), "event %d", i)
	}
}

func TestListen_ReadErrorCarriesHistory(t *testing.T) {
	t.Parallel()

	module := virt.NewVirtualVoiceModule()
	module.Say(scoreboard.CmdHomePointUp)
	link, _ := newTestLink(t, &failAfter{rw: module, reads: 4, err: errors.New("usb reset")})

	err := link.Listen(context.Background(), func(scoreboard.RxEvent) {})
	require.ErrorIs(t, err, scoreboard.ErrTransportRead)
	assert.True(t, scoreboard.IsRetryable(err))

	h := scoreboard.History(err)
	require.NotNil(t, h)
	assert.Equal(t, scoreboard.LinkUART, h.Link)
	assert.NotEmpty(t, h.Bursts)
}

func TestListen_DeviceGoneIsFatal(t *testing.T) {
	t.Parallel()

	link, _ := newTestLink(t, &failAfter{rw: virt.NewVirtualVoiceModule(), err: syscall.ENXIO})

	err := link.Listen(context.Background(), func(scoreboard.RxEvent) {})
	require.Error(t, err)
	assert.True(t, scoreboard.IsFatal(err))
	assert.False(t, scoreboard.IsRetryable(err))
}

func TestListen_CloseEndsListen(t *testing.T) {
	t.Parallel()

	link, _ := newTestLink(t, virt.NewVirtualVoiceModule())
	done := make(chan error, 1)
	go func() { done <- link.Listen(context.Background(), func(scoreboard.RxEvent) {}) }()

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, link.Close())
	require.NoError(t, link.Close())

	select {
	case err := <-done:
		require.ErrorIs(t, err, scoreboard.ErrTransportClosed)
	case <-time.After(waitTimeout):
		t.Fatal("Listen did not return after Close")
	}
}

func TestWrite(t *testing.T) {
	t.Parallel()

	module := virt.NewVirtualVoiceModule()
	link, _ := newTestLink(t, module)

	n, err := link.Write([]byte{0xF4, 0xF5})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0xF4, 0xF5}, module.Written())
	assert.Equal(t, scoreboard.LinkUART, link.Type())
	assert.Equal(t, "/dev/ttyTEST", link.PortName())
}

// failAfter passes reads through until the budget runs out, then fails.
type failAfter struct {
	rw    io.ReadWriter
	err   error
	reads int
}

func (f *failAfter) Read(p []byte) (int, error) {
	if f.reads <= 0 {
		return 0, f.err
	}
	f.reads--
	return f.rw.Read(p)
}

func (f *failAfter) Write(p []byte) (int, error) {
	return f.rw.Write(p)
}
