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

package scoreboard

import (
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func applyAll(s MatchState, cmds ...Command) MatchState {
	for _, c := range cmds {
		s = s.Apply(c)
	}
	return s
}

func repeat(c Command, n int) []Command {
	out := make([]Command, n)
	for i := range out {
		out[i] = c
	}
	return out
}

func TestMatchState_Apply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cmds []Command
		want MatchState
	}{
		{
			name: "home point up",
			cmds: []Command{CmdHomePointUp},
			want: MatchState{HomePoints: 1},
		},
		{
			name: "guest points down floors at zero",
			cmds: []Command{CmdGuestPointDown, CmdGuestPointDown},
			want: MatchState{},
		},
		{
			name: "home points clamp at 99",
			cmds: repeat(CmdHomePointUp, 150),
			want: MatchState{HomePoints: MaxPoints},
		},
		{
			name: "guest sets clamp at 9",
			cmds: repeat(CmdGuestSetUp, 12),
			want: MatchState{GuestSets: MaxSets},
		},
		{
			name: "home set down floors at zero",
			cmds: []Command{CmdHomeSetUp, CmdHomeSetDown, CmdHomeSetDown},
			want: MatchState{},
		},
		{
			name: "serving switches sides",
			cmds: []Command{CmdHomeServing, CmdGuestServing},
			want: MatchState{Serving: ServingGuest},
		},
		{
			name: "reset clears everything",
			cmds: []Command{CmdHomePointUp, CmdGuestSetUp, CmdHomeServing, CmdReset},
			want: MatchState{},
		},
		{
			name: "unknown command is ignored",
			cmds: []Command{CmdGuestPointUp, Command(0x42), Command(0x00)},
			want: MatchState{GuestPoints: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, applyAll(MatchState{}, tt.cmds...))
		})
	}
}

func TestMatchState_ClampAtTwoPoints(t *testing.T) {
	t.Parallel()

	s := applyAll(MatchState{}, CmdHomePointUp, CmdHomePointUp, CmdHomePointDown)
	assert.Equal(t, uint8(1), s.HomePoints)

	s = applyAll(MatchState{}, repeat(CmdGuestPointUp, MaxPoints)...)
	assert.Equal(t, uint8(MaxPoints), s.GuestPoints)
	assert.Equal(t, uint8(MaxPoints), s.Apply(CmdGuestPointUp).GuestPoints)
	assert.Equal(t, uint8(MaxPoints-1), s.Apply(CmdGuestPointDown).GuestPoints)
}

// TestMatchState_RandomSequences checks the bounds and serving invariants
// over arbitrary command streams.
func TestMatchState_RandomSequences(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	for range 200 {
		s := MatchState{}
		for range 500 {
			s = s.Apply(Command(rng.IntN(0x12)))

			require.LessOrEqual(t, s.HomePoints, uint8(MaxPoints))
			require.LessOrEqual(t, s.GuestPoints, uint8(MaxPoints))
			require.LessOrEqual(t, s.HomeSets, uint8(MaxSets))
			require.LessOrEqual(t, s.GuestSets, uint8(MaxSets))
			require.Contains(t, []Serving{ServingNone, ServingHome, ServingGuest}, s.Serving)
		}
	}
}

func TestMatch_ConcurrentApply(t *testing.T) {
	t.Parallel()

	m := NewMatch()
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				m.Apply(CmdHomePointUp)
				_ = m.State()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint8(80), m.State().HomePoints)
	assert.Equal(t, MatchState{}, m.Reset())
}

func TestServing_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "none", ServingNone.String())
	assert.Equal(t, "home", ServingHome.String())
	assert.Equal(t, "guest", ServingGuest.String())
	assert.Equal(t, "invalid(0x03)", Serving(3).String())
}
