// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

package ensemble

import (
	"context"
	"sync/atomic"

	"github.com/coriolis-labs/ensemble/internal/metrics"
)

// relayGeneration is one incarnation of a service's inbound/outbound pair.
// A fresh generation is built on every Start; the previous one's send side
// is retired (closed for sends, not closed as a Go channel — concurrent
// senders must fail with an error, not panic) so that senders acquired
// before a restart observe "disconnected" instead of silently delivering
// into a receiver nobody reads anymore. This stands in for the sidecar
// hand-off: instead of physically returning the same receiver across a
// stop/start cycle, the slot just swaps in a new generation and severs the
// old one, which gives restarts a fresh relay identity (see scenario 6).
type relayGeneration struct {
	ch     chan any
	closed atomic.Bool
	svc    string
}

func newRelayGeneration(bufSize int, svc string) *relayGeneration {
	return &relayGeneration{ch: make(chan any, bufSize), svc: svc}
}

func (g *relayGeneration) retire() {
	g.closed.Store(true)
}

// Outbound is a cloneable sender for one service's message type. Send is
// the cooperative flavor: it suspends until there is buffer capacity or
// ctx is done. There is no blocking flavor exposed to user code — the spec
// forbids it inside the executor, and Go has no safe way to offer "block
// the OS thread" without risking starving the goroutine scheduler, so the
// cooperative send via context is the only send path.
type Outbound[M any] struct {
	gen *relayGeneration
}

// Send delivers m, returning ErrDisconnected if this generation has been
// retired by a restart, or ctx.Err() if ctx is done first.
func (o Outbound[M]) Send(ctx context.Context, m M) error {
	if o.gen.closed.Load() {
		metrics.RelaySendFailures.WithLabelValues(o.gen.svc).Inc()
		return ErrDisconnected
	}
	select {
	case o.gen.ch <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Inbound is the unique, mobile receive side. Only one goroutine should
// ever read from it at a time; ownership moves from the runner (Stopped)
// to the running user task (Started) and never overlaps, per the relay
// uniqueness invariant.
type Inbound[M any] struct {
	ch <-chan any
}

// Chan exposes the raw boxed channel for use in a select alongside other
// cases (fuse, lifecycle commands, ctx.Done).
func (i Inbound[M]) Chan() <-chan any { return i.ch }

// Recv blocks for the next message or ctx cancellation.
func (i Inbound[M]) Recv(ctx context.Context) (M, error) {
	var zero M
	select {
	case v, ok := <-i.ch:
		if !ok {
			return zero, ErrDisconnected
		}
		return v.(M), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
