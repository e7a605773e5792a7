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
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig(attempts int) *RetryConfig {
	return &RetryConfig{
		MaxAttempts:       attempts,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func TestRetryConfigs(t *testing.T) {
	t.Parallel()

	for _, config := range []*RetryConfig{DefaultRetryConfig(), BootRetryConfig()} {
		assert.Positive(t, config.MaxAttempts)
		assert.Greater(t, config.MaxBackoff, config.InitialBackoff)
		assert.Greater(t, config.BackoffMultiplier, 1.0)
		assert.GreaterOrEqual(t, config.Jitter, 0.0)
		assert.LessOrEqual(t, config.Jitter, 1.0)
	}
	assert.Positive(t, BootRetryConfig().RetryTimeout)
}

func TestCalculateNextBackoff(t *testing.T) {
	t.Parallel()

	config := &RetryConfig{BackoffMultiplier: 2.0, MaxBackoff: 5 * time.Second}
	assert.Equal(t, 200*time.Millisecond, calculateNextBackoff(100*time.Millisecond, config))
	assert.Equal(t, 5*time.Second, calculateNextBackoff(3*time.Second, config))

	config.BackoffMultiplier = 1.5
	assert.Equal(t, 300*time.Millisecond, calculateNextBackoff(200*time.Millisecond, config))
}

func TestCalculateJitteredSleep(t *testing.T) {
	t.Parallel()

	base := 100 * time.Millisecond
	assert.Equal(t, base, calculateJitteredSleep(base, 0))
	for range 50 {
		got := calculateJitteredSleep(base, 0.5)
		assert.GreaterOrEqual(t, got, base)
		assert.LessOrEqual(t, got, 150*time.Millisecond)
	}
}

func TestRetry_SucceedsAfterTransientErrors(t *testing.T) {
	t.Parallel()

	calls := 0
	port, err := Retry(context.Background(), fastRetryConfig(5), func() (string, error) {
		calls++
		if calls < 3 {
			return "", NewTimeoutError("open", "/dev/ttyUSB0")
		}
		return "/dev/ttyUSB0", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", port)
	assert.Equal(t, 3, calls)
}

func TestRetry_StopsOnPermanentError(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := Retry(context.Background(), fastRetryConfig(5), func() (int, error) {
		calls++
		return 0, NewDeviceNotFoundError("open", "/dev/ttyUSB0")
	})
	require.ErrorIs(t, err, ErrDeviceNotFound)
	assert.Equal(t, 1, calls)
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := Retry(context.Background(), fastRetryConfig(3), func() (int, error) {
		calls++
		return 0, ErrTransportNotReady
	})
	require.ErrorIs(t, err, ErrTransportNotReady)
	assert.Equal(t, 3, calls)
}

func TestRetry_NoAttemptsCallsOnce(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := Retry(context.Background(), &RetryConfig{}, func() (int, error) {
		calls++
		return 0, ErrTransportTimeout
	})
	require.ErrorIs(t, err, ErrTransportTimeout)
	assert.Equal(t, 1, calls)
}

func TestRetry_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Retry(ctx, fastRetryConfig(3), func() (int, error) {
		return 0, errors.New("never called")
	})
	require.ErrorIs(t, err, context.Canceled)
}
