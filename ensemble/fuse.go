// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

package ensemble

import "sync"

// fuse is a one-shot broadcast signal: the Go analogue of a capacity-one
// broadcast channel used purely to wake every observer once. Closing a
// channel is the idiomatic multi-receiver signal in Go, so fire just
// closes it; sync.Once makes a second fire a no-op instead of a panic.
type fuse struct {
	once sync.Once
	ch   chan struct{}
}

func newFuse() *fuse {
	return &fuse{ch: make(chan struct{})}
}

func (f *fuse) fire() {
	f.once.Do(func() { close(f.ch) })
}

func (f *fuse) done() <-chan struct{} {
	return f.ch
}
