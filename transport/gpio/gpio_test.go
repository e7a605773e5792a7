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

package gpio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func newPins(t *testing.T) (*Indicators, *gpiotest.Pin, *gpiotest.Pin, *gpiotest.Pin) {
	t.Helper()

	hb := &gpiotest.Pin{N: "HB", L: gpio.High}
	run := &gpiotest.Pin{N: "RUN", L: gpio.High}
	busy := &gpiotest.Pin{N: "BUSY", L: gpio.High}
	ind, err := NewWithPins(hb, run, []gpio.PinOut{busy}, time.Millisecond)
	require.NoError(t, err)
	return ind, hb, run, busy
}

func TestNewWithPins_StartsLow(t *testing.T) {
	t.Parallel()

	_, hb, run, busy := newPins(t)
	assert.Equal(t, gpio.Low, hb.Read())
	assert.Equal(t, gpio.Low, run.Read())
	assert.Equal(t, gpio.Low, busy.Read())
}

func TestToggleHeartbeat(t *testing.T) {
	t.Parallel()

	ind, hb, _, _ := newPins(t)
	ind.ToggleHeartbeat()
	assert.Equal(t, gpio.High, hb.Read())
	ind.ToggleHeartbeat()
	assert.Equal(t, gpio.Low, hb.Read())
}

func TestClearBusy(t *testing.T) {
	t.Parallel()

	ind, _, _, busy := newPins(t)
	ind.SetBusy()
	assert.Equal(t, gpio.High, busy.Read())
	ind.ClearBusy()
	assert.Equal(t, gpio.Low, busy.Read())
}

func TestBlink_StopsLow(t *testing.T) {
	t.Parallel()

	ind, _, run, _ := newPins(t)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	ind.Blink(ctx)
	assert.Equal(t, gpio.Low, run.Read())
}

func TestNilPinsAreSkipped(t *testing.T) {
	t.Parallel()

	ind, err := NewWithPins(nil, nil, nil, 0)
	require.NoError(t, err)
	ind.ToggleHeartbeat()
	ind.ClearBusy()
	ind.Blink(context.Background())
	require.NoError(t, ind.Close())
}
