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
	"strconv"
	"strings"
)

// Command is a DF2301Q command word identifying one recognised voice phrase.
type Command byte

// Command words emitted by the voice module for the scoreboard phrases.
const (
	CmdHomePointUp    Command = 0x05
	CmdHomePointDown  Command = 0x06
	CmdGuestPointUp   Command = 0x07
	CmdGuestPointDown Command = 0x08
	CmdHomeSetUp      Command = 0x09
	CmdHomeSetDown    Command = 0x0A
	CmdGuestSetUp     Command = 0x0B
	CmdGuestSetDown   Command = 0x0C
	CmdHomeServing    Command = 0x0D
	CmdGuestServing   Command = 0x0E
	CmdReset          Command = 0x0F
)

var commandNames = map[Command]string{
	CmdHomePointUp:    "home_point_up",
	CmdHomePointDown:  "home_point_down",
	CmdGuestPointUp:   "guest_point_up",
	CmdGuestPointDown: "guest_point_down",
	CmdHomeSetUp:      "home_set_up",
	CmdHomeSetDown:    "home_set_down",
	CmdGuestSetUp:     "guest_set_up",
	CmdGuestSetDown:   "guest_set_down",
	CmdHomeServing:    "home_serving",
	CmdGuestServing:   "guest_serving",
	CmdReset:          "reset",
}

// Commands returns every known command word in ascending order.
func Commands() []Command {
	cmds := make([]Command, 0, len(commandNames))
	for c := CmdHomePointUp; c <= CmdReset; c++ {
		cmds = append(cmds, c)
	}
	return cmds
}

// Known reports whether c is one of the scoreboard command words.
func (c Command) Known() bool {
	_, ok := commandNames[c]
	return ok
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("unknown(0x%02X)", byte(c))
}

// ParseCommand resolves a command by name ("home_point_up") or by its
// hexadecimal word ("0x05").
func ParseCommand(s string) (Command, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for c, name := range commandNames {
		if name == s || strings.ReplaceAll(name, "_", "-") == s {
			return c, nil
		}
	}

	if hex, ok := strings.CutPrefix(s, "0x"); ok {
		if word, err := strconv.ParseUint(hex, 16, 8); err == nil && Command(word).Known() {
			return Command(word), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown command %q", ErrInvalidParameter, s)
}
