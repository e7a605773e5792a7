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
	"bytes"
	"testing"

	scoreboard "github.com/ZaparooProject/go-scoreboard"
	"github.com/ZaparooProject/go-scoreboard/internal/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulator_Say(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	sim := newSimulator(&buf)

	sent, err := sim.Say(scoreboard.CmdHomePointUp)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xF4, 0xF5, 0x03, 0x00, 0xA3, 0x91, 0x01, 0x05, 0x00, 0x00, 0x3A, 0x01, 0xFB}, sent)
	assert.Equal(t, sent, buf.Bytes())

	sent, err = sim.Say(scoreboard.CmdReset)
	require.NoError(t, err)
	f, err := frame.Decode(sent)
	require.NoError(t, err)
	assert.Equal(t, byte(2), f.Seq)
	assert.True(t, f.ChecksumValid())
}

func TestSimulator_AbortAndStatus(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	sim := newSimulator(&buf)

	sent, err := sim.Abort(scoreboard.CmdGuestServing)
	require.NoError(t, err)
	assert.Len(t, sent, frame.AbortedSize)
	assert.Equal(t, frame.KindAborted, frame.Classify(len(sent)))

	sent, err = sim.Status()
	require.NoError(t, err)
	f, err := frame.Decode(sent)
	require.NoError(t, err)
	assert.Equal(t, frame.SelectorStatus, f.Selector())
}

func TestSimulator_Raw(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	sim := newSimulator(&buf)

	sent, err := sim.Raw([]string{"F4F5", "03"})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xF4, 0xF5, 0x03}, sent)

	_, err = sim.Raw([]string{"zz"})
	require.ErrorIs(t, err, scoreboard.ErrInvalidParameter)
}

func TestShell_Process(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	w, err := openWriter("", 9600, &out)
	require.NoError(t, err)

	sh := newShell(newSimulator(w))
	require.NoError(t, sh.Process("say", "guest-point-up"))
	assert.Equal(t, "F4 F5 03 00 A3 91 01 07 00 00 3C 01 FB\n", out.String())
}
