// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

package ensemble

import (
	"context"
	"time"

	"github.com/coriolis-labs/ensemble/ensemble/service"
	"github.com/coriolis-labs/ensemble/internal/metrics"
)

// stateSnapshot is the Option<State> carried by the state stream: has is
// false until the first real value is published, which is exactly the
// sentinel the spec calls for so the observer never persists before a
// genuine snapshot exists.
type stateSnapshot struct {
	val any
	has bool
}

// stateStream is the latest-value broadcast of a service's state,
// subscribed to exactly once (by that service's observer task) at start.
type stateStream struct {
	w *watcher[stateSnapshot]
}

func newStateStream() *stateStream {
	return &stateStream{w: newWatcher(stateSnapshot{})}
}

func (s *stateStream) publish(v any) {
	s.w.set(stateSnapshot{val: v, has: true})
}

// observe runs the observer loop: for every new Some(state) it calls
// operator.Run; a fuse signal ends the loop after a best-effort attempt to
// drain whatever the stream last held that the operator has not yet seen.
func (s *stateStream) observe(ctx context.Context, svc string, operator service.StateOperator, fuseDone <-chan struct{}, log func(string, error)) {
	runTimed := func(val any) error {
		start := time.Now()
		defer func() { metrics.StateOperatorRunDuration.WithLabelValues(svc).Observe(time.Since(start).Seconds()) }()
		return operator.Run(ctx, val)
	}

	seen, seenVersion := s.w.versioned()
	if seen.has {
		if err := runTimed(seen.val); err != nil {
			log("state operator run failed", err)
		}
	}

	for {
		changed := s.w.changed()
		select {
		case <-fuseDone:
			// Best-effort final drain: if a newer snapshot landed between
			// our last Run and the fuse firing, persist it before exiting.
			final, finalVersion := s.w.versioned()
			if final.has && finalVersion != seenVersion {
				if err := runTimed(final.val); err != nil {
					log("state operator final drain failed", err)
				}
			}
			return
		case <-changed:
			seen, seenVersion = s.w.versioned()
			if seen.has {
				if err := runTimed(seen.val); err != nil {
					log("state operator run failed", err)
				}
			}
		}
	}
}
