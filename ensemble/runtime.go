// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

package ensemble

import (
	"context"
	"sync"

	"github.com/coriolis-labs/ensemble/ensemble/service"
)

// Runtime is C1: it owns the supervisor's background goroutine (the task
// executor, in spec terms) and the one blocking call, Wait, that returns
// once the finish signal fires. Construction is New, which builds the
// container, spawns the supervisor loop as the first task, and hands back
// the runtime plus a control handle.
type Runtime struct {
	wg       sync.WaitGroup
	finished *fuse
	handle   ControlHandle
}

// Option configures a Runtime at construction.
type Option func(*options)

type options struct {
	queueCapacity int
	logf          func(msg string, err error)
}

// WithQueueCapacity overrides the command queue's buffer size (default 16,
// per the spec's suggested capacity).
func WithQueueCapacity(n int) Option {
	return func(o *options) { o.queueCapacity = n }
}

// WithLogger installs a sink for the runtime's diagnostic and
// partial-failure logging (idempotent start/stop notices, state-load
// failures, operator run errors, service run errors). The default discards
// everything.
func WithLogger(logf func(msg string, err error)) Option {
	return func(o *options) { o.logf = logf }
}

// New builds the service container from b, starts the supervisor loop in
// the background, and returns the running Runtime plus a ControlHandle.
// Construction fails only when b accumulated a build-time error, such as a
// duplicate service id (P1).
func New(ctx context.Context, b *Builder, opts ...Option) (*Runtime, ControlHandle, error) {
	cfg := options{queueCapacity: 16, logf: func(string, error) {}}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Runtime{finished: newFuse()}

	var sv *supervisor
	// selfStop is threaded into every slot at container-build time. sv is
	// assigned just below, before the supervisor loop (and therefore
	// before any service's user task) ever runs, so by the time a slot
	// actually invokes this closure sv is never nil.
	selfStop := func(id service.ID) {
		sv.enqueueBestEffort(func(context.Context) bool {
			sv.container.stop(id)
			return false
		})
	}

	c, err := buildContainer(b, selfStop, cfg.logf)
	if err != nil {
		return nil, ControlHandle{}, err
	}

	sv = newSupervisor(c, cfg.queueCapacity)
	r.handle = ControlHandle{sv: sv}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		sv.run(ctx, r.finished)
	}()

	return r, r.handle, nil
}

// Wait blocks until Shutdown has fully drained the container and the
// supervisor loop has exited.
func (r *Runtime) Wait() {
	<-r.finished.done()
	r.wg.Wait()
}

// Spawn launches fn on the runtime's own executor, tracked by the same
// WaitGroup Wait joins — the Go equivalent of the original's
// runtime_handle()/spawn surface (see SPEC_FULL.md §3). fn should respect
// ctx cancellation; Spawn does not cancel ctx itself, callers that want
// their spawned work torn down on shutdown should derive ctx from one
// they cancel alongside calling Shutdown.
func (r *Runtime) Spawn(ctx context.Context, fn func(context.Context)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		fn(ctx)
	}()
}
