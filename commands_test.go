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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommands_Ordered(t *testing.T) {
	t.Parallel()

	cmds := Commands()
	require.Len(t, cmds, 11)
	assert.Equal(t, CmdHomePointUp, cmds[0])
	assert.Equal(t, CmdReset, cmds[len(cmds)-1])
	for _, c := range cmds {
		assert.True(t, c.Known(), c.String())
	}
}

func TestCommand_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "guest_set_down", CmdGuestSetDown.String())
	assert.Equal(t, "unknown(0x42)", Command(0x42).String())
	assert.False(t, Command(0x04).Known())
	assert.False(t, Command(0x10).Known())
}

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Command
		wantErr bool
	}{
		{input: "home_point_up", want: CmdHomePointUp},
		{input: "  Guest-Serving ", want: CmdGuestServing},
		{input: "0x0f", want: CmdReset},
		{input: "0x0A", want: CmdHomeSetDown},
		{input: "0x42", wantErr: true},
		{input: "0x", wantErr: true},
		{input: "timeout", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseCommand(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidParameter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
