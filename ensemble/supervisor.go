// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

package ensemble

import "context"

// supervisor is the sole consumer of the command queue (C2). Every
// command is a pre-bound closure built by a ControlHandle method; the
// loop's only job is to pull one at a time and run it to completion
// before pulling the next, which is what gives the whole system its FIFO
// command ordering guarantee (spec §5: "the supervisor processes one
// command fully before the next").
type supervisor struct {
	cmdCh     chan cmd
	container *container
}

func newSupervisor(c *container, queueCapacity int) *supervisor {
	if queueCapacity <= 0 {
		queueCapacity = 16
	}
	return &supervisor{
		cmdCh:     make(chan cmd, queueCapacity),
		container: c,
	}
}

// run drains commands until one returns stop=true (Shutdown), then closes
// the queue and only after that fires finished, so that once Wait has
// returned any command sent afterwards panics on send rather than
// silently vanishing — the supervisor-gone
// case the spec calls unreachable by construction.
func (sv *supervisor) run(ctx context.Context, finished *fuse) {
	defer finished.fire()
	defer close(sv.cmdCh)

	for {
		select {
		case c, ok := <-sv.cmdCh:
			if !ok {
				return
			}
			if c(ctx) {
				return
			}
		case <-ctx.Done():
			sv.container.stopAll()
			sv.container.teardown()
			return
		}
	}
}

// enqueue sends c to the supervisor, converting a send-on-closed-channel
// panic (the supervisor already shut down) into the documented
// ErrSupervisorGone panic.
func (sv *supervisor) enqueue(c cmd) {
	defer func() {
		if r := recover(); r != nil {
			panic(ErrSupervisorGone)
		}
	}()
	sv.cmdCh <- c
}

// enqueueBestEffort is used for the internal self-stop path: a user task
// that finishes after (or racing) a shutdown should not panic the whole
// process just because the queue already closed.
func (sv *supervisor) enqueueBestEffort(c cmd) {
	defer func() { recover() }() //nolint:errcheck // best-effort by design
	sv.cmdCh <- c
}
