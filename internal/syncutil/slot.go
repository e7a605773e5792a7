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

import "context"

// Slot is a single-value mailbox shared by one or more producers and one
// consumer. Put never blocks: a value not yet taken is replaced, so the
// consumer only ever sees the latest one.
type Slot[T any] struct {
	ch chan T
	mu Mutex
}

// NewSlot returns an empty slot.
func NewSlot[T any]() *Slot[T] {
	return &Slot[T]{ch: make(chan T, 1)}
}

// Put stores v, discarding any value still pending. It reports whether a
// pending value was replaced.
func (s *Slot[T]) Put(v T) (replaced bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-s.ch:
		replaced = true
	default:
	}
	// Only producers send and they are serialised by mu, so the buffer
	// is empty here.
	s.ch <- v
	return replaced
}

// C returns the channel the consumer receives from.
func (s *Slot[T]) C() <-chan T {
	return s.ch
}

// Take blocks until a value is available or ctx is done.
func (s *Slot[T]) Take(ctx context.Context) (T, error) {
	select {
	case v := <-s.ch:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// TryTake returns the pending value, if any.
func (s *Slot[T]) TryTake() (T, bool) {
	select {
	case v := <-s.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}
