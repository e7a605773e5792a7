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

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	scoreboard "github.com/ZaparooProject/go-scoreboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scoreboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()
	require.NoError(t, Default().Validate())
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	path := writeFile(t, `
link:
  type: i2c
  port: "1"
  poll_interval: 25ms
  volume: 5
radio:
  type: mqtt
  broker: mqtt://broker:1883/court2
display:
  type: console
strict_checksum: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "i2c", cfg.Link.Type)
	assert.Equal(t, "1", cfg.Link.Port)
	assert.Equal(t, 25*time.Millisecond, cfg.Link.PollInterval)
	assert.Equal(t, 5, cfg.Link.Volume)
	assert.Equal(t, "mqtt", cfg.Radio.Type)
	assert.Equal(t, "console", cfg.Display.Type)
	assert.True(t, cfg.StrictChecksum)

	// untouched keys keep their defaults
	assert.Equal(t, 9600, cfg.Link.Baud)
	assert.Equal(t, scoreboard.DeviceName, cfg.Radio.Name)
	assert.Equal(t, []string{"GPIO22"}, cfg.Indicators.Busy)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SCOREBOARD_LINK_PORT", "/dev/ttyUSB3")
	t.Setenv("SCOREBOARD_HTTP_ENABLE", "true")

	cfg, err := Load(writeFile(t, "link:\n  port: /dev/ttyUSB0\n"))
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB3", cfg.Link.Port)
	assert.True(t, cfg.HTTP.Enable)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "bad link type", body: "link:\n  type: usb\n"},
		{name: "replay without file", body: "link:\n  type: replay\n"},
		{name: "volume range", body: "link:\n  type: i2c\n  volume: 9\n"},
		{name: "brightness range", body: "display:\n  brightness: 300\n"},
		{name: "empty name", body: "radio:\n  name: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(writeFile(t, tt.body))
			require.ErrorIs(t, err, scoreboard.ErrInvalidParameter)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestWriteExample_RoundTrips(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteExample(&buf))
	assert.Contains(t, buf.String(), "idle_timeout: 20ms")

	cfg, err := Load(writeFile(t, buf.String()))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
