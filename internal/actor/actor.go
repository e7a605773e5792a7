// go-pn532
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-pn532.
//
// go-pn532 is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-pn532 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-pn532; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Package actor runs a node loop in the background with Start and Stop.
package actor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/ZaparooProject/go-scoreboard/internal/syncutil"
)

// ErrAlreadyStarted is returned by Start on a started actor.
var ErrAlreadyStarted = errors.New("actor already started")

// Runnable is a blocking loop that returns when ctx is cancelled or it
// fails.
type Runnable interface {
	Run(ctx context.Context) error
}

// RunFunc adapts a function to Runnable.
type RunFunc func(ctx context.Context) error

// Run implements Runnable.
func (f RunFunc) Run(ctx context.Context) error { return f(ctx) }

// Actor owns one Runnable goroutine.
type Actor struct {
	r       Runnable
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
	wg      sync.WaitGroup
	mu      syncutil.Mutex
	started atomic.Bool
	running atomic.Bool
}

// New wraps r.
func New(r Runnable) *Actor {
	return &Actor{r: r, done: make(chan struct{})}
}

// Start launches the loop. An actor can be started once.
func (a *Actor) Start(ctx context.Context) error {
	if !a.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	a.cancel = cancel
	a.mu.Unlock()

	a.running.Store(true)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer close(a.done)
		defer a.running.Store(false)

		err := a.r.Run(runCtx)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		a.mu.Lock()
		a.err = err
		a.mu.Unlock()
	}()
	return nil
}

// Stop cancels the loop and waits for it to return or ctx to expire.
func (a *Actor) Stop(ctx context.Context) error {
	a.mu.Lock()
	cancel := a.cancel
	a.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-a.done:
		return a.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when the loop has returned.
func (a *Actor) Done() <-chan struct{} {
	return a.done
}

// Err returns the loop's error once it has returned. Cancellation is not
// an error.
func (a *Actor) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Running reports whether the loop is executing.
func (a *Actor) Running() bool {
	return a.running.Load()
}

// Wait blocks until the loop has returned.
func (a *Actor) Wait() {
	a.wg.Wait()
}
