// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

package ensemble

import "sync"

// watcher is a latest-value broadcast cell: the Go analogue of tokio's
// watch channel. One writer publishes successive values; any number of
// readers observe only the most recent one, with no history and no
// blocking on the writer. A reader subscribes by capturing the channel
// returned from changed() and re-reading get() each time it fires; the
// channel is replaced (never reused) on every Set, which is what gives
// every subscriber a wakeup regardless of when it started watching.
type watcher[T any] struct {
	mu      sync.Mutex
	val     T
	version uint64
	ch      chan struct{}
}

func newWatcher[T any](initial T) *watcher[T] {
	return &watcher[T]{val: initial, ch: make(chan struct{})}
}

// set publishes a new value and wakes every current subscriber.
func (w *watcher[T]) set(v T) {
	w.mu.Lock()
	w.val = v
	w.version++
	closing := w.ch
	w.ch = make(chan struct{})
	w.mu.Unlock()
	close(closing)
}

// get returns the most recently published value.
func (w *watcher[T]) get() T {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.val
}

// versioned returns the current value alongside a monotonic version
// counter, letting callers detect a new publish without requiring T to be
// comparable (user-defined State/Settings types may hold slices or maps).
func (w *watcher[T]) versioned() (T, uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.val, w.version
}

// changed returns a channel that closes the next time set is called. It
// must be re-fetched after every wakeup to watch for the following update.
func (w *watcher[T]) changed() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ch
}
