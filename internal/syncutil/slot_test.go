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

package syncutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlot_LatestWins(t *testing.T) {
	t.Parallel()

	s := NewSlot[int]()
	assert.False(t, s.Put(1))
	assert.True(t, s.Put(2))
	assert.True(t, s.Put(3))

	v, ok := s.TryTake()
	require.True(t, ok)
	assert.Equal(t, 3, v)

	_, ok = s.TryTake()
	assert.False(t, ok)
}

func TestSlot_TakeCancelled(t *testing.T) {
	t.Parallel()

	s := NewSlot[string]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.Take(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSlot_ConcurrentProducersNeverBlock(t *testing.T) {
	t.Parallel()

	s := NewSlot[int]()
	var wg sync.WaitGroup
	for p := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 1000 {
				s.Put(p*1000 + i)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("producers blocked")
	}

	_, ok := s.TryTake()
	assert.True(t, ok)
}

func TestSlot_ConsumerSeesEveryValueWhenKeepingUp(t *testing.T) {
	t.Parallel()

	s := NewSlot[int]()
	ctx := context.Background()
	for i := range 5 {
		s.Put(i)
		v, err := s.Take(ctx)
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
}
