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
	"fmt"

	"github.com/ZaparooProject/go-scoreboard/internal/syncutil"
)

// Scoring limits. Increments beyond a maximum and decrements below zero
// leave the field unchanged.
const (
	MaxPoints = 99
	MaxSets   = 9
)

// Serving is the serving indicator bitfield. At most one bit is set.
type Serving uint8

const (
	// ServingNone means no team is marked as serving.
	ServingNone Serving = 0
	// ServingHome marks the home team as serving.
	ServingHome Serving = 1 << 0
	// ServingGuest marks the guest team as serving.
	ServingGuest Serving = 1 << 1
)

func (s Serving) String() string {
	switch s {
	case ServingNone:
		return "none"
	case ServingHome:
		return "home"
	case ServingGuest:
		return "guest"
	default:
		return fmt.Sprintf("invalid(0x%02X)", uint8(s))
	}
}

// MatchState is the authoritative score of a match.
type MatchState struct {
	HomePoints  uint8
	GuestPoints uint8
	HomeSets    uint8
	GuestSets   uint8
	Serving     Serving
}

func (s MatchState) String() string {
	return fmt.Sprintf("home %d (%d sets) guest %d (%d sets) serving %s",
		s.HomePoints, s.HomeSets, s.GuestPoints, s.GuestSets, s.Serving)
}

// Apply returns the state produced by cmd. Unknown commands return s
// unchanged.
func (s MatchState) Apply(cmd Command) MatchState {
	switch cmd {
	case CmdHomePointUp:
		s.HomePoints = increment(s.HomePoints, MaxPoints)
	case CmdHomePointDown:
		s.HomePoints = decrement(s.HomePoints)
	case CmdGuestPointUp:
		s.GuestPoints = increment(s.GuestPoints, MaxPoints)
	case CmdGuestPointDown:
		s.GuestPoints = decrement(s.GuestPoints)
	case CmdHomeSetUp:
		s.HomeSets = increment(s.HomeSets, MaxSets)
	case CmdHomeSetDown:
		s.HomeSets = decrement(s.HomeSets)
	case CmdGuestSetUp:
		s.GuestSets = increment(s.GuestSets, MaxSets)
	case CmdGuestSetDown:
		s.GuestSets = decrement(s.GuestSets)
	case CmdHomeServing:
		s.Serving = ServingHome
	case CmdGuestServing:
		s.Serving = ServingGuest
	case CmdReset:
		s = MatchState{}
	}
	return s
}

func increment(v, limit uint8) uint8 {
	if v < limit {
		return v + 1
	}
	return v
}

func decrement(v uint8) uint8 {
	if v > 0 {
		return v - 1
	}
	return v
}

// Match holds the live MatchState of a broadcaster. It is safe for
// concurrent use.
type Match struct {
	mu    syncutil.RWMutex
	state MatchState
}

// NewMatch returns a match at the zero state.
func NewMatch() *Match {
	return &Match{}
}

// Apply mutates the match with cmd and returns the resulting state.
func (m *Match) Apply(cmd Command) MatchState {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = m.state.Apply(cmd)
	return m.state
}

// State returns a copy of the current state.
func (m *Match) State() MatchState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Reset returns the match to the zero state.
func (m *Match) Reset() MatchState {
	return m.Apply(CmdReset)
}
