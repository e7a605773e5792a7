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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:paralleltest // mutates the package-level session log
func TestSessionLog_WritesJSONLines(t *testing.T) {
	dir := t.TempDir()

	path, err := InitSessionLog(dir, "broadcaster")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "broadcaster.log"), path)
	assert.Equal(t, path, GetSessionLogPath())

	Debugf("frame dropped: %s", "bad_header")
	Debugln("applied command ", CmdHomePointUp)
	require.NoError(t, CloseSessionLog())
	assert.Empty(t, GetSessionLogPath())

	content, err := os.ReadFile(path) //nolint:gosec // test temp file
	require.NoError(t, err)
	assert.Contains(t, string(content), `"message":"session started"`)
	assert.Contains(t, string(content), "frame dropped: bad_header")
	assert.Contains(t, string(content), "applied command home_point_up")
	assert.Contains(t, string(content), `"message":"session ended"`)
}

//nolint:paralleltest // mutates the package-level session log
func TestCloseSessionLog_WithoutInit(t *testing.T) {
	require.NoError(t, CloseSessionLog())
}

//nolint:paralleltest // mutates the debug flag
func TestSetDebugEnabled(t *testing.T) {
	prev := DebugEnabled()
	t.Cleanup(func() { SetDebugEnabled(prev) })

	SetDebugEnabled(true)
	assert.True(t, DebugEnabled())
	SetDebugEnabled(false)
	assert.False(t, DebugEnabled())
}
