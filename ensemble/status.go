// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

package ensemble

import (
	"context"
	"sync"
	"time"

	"github.com/coriolis-labs/ensemble/ensemble/service"
	"github.com/coriolis-labs/ensemble/internal/metrics"
)

// StatusWatcher is the latest-value channel for one service's Status. Two
// writers share it: the runner (Starting/Stopped around lifecycle edges)
// and the service body itself (Ready, via the restricted ReadyNotifier).
type StatusWatcher struct {
	w   *watcher[service.Status]
	svc string

	mu         sync.Mutex
	startingAt time.Time
}

func newStatusWatcher(svc string) *StatusWatcher {
	return &StatusWatcher{w: newWatcher(service.Stopped), svc: svc}
}

// set records the new status and, across the Starting -> Ready edge,
// observes the elapsed time into StatusTransitionLatency.
func (s *StatusWatcher) set(st service.Status) {
	switch st {
	case service.Starting:
		s.mu.Lock()
		s.startingAt = time.Now()
		s.mu.Unlock()
	case service.Ready:
		s.mu.Lock()
		startedAt := s.startingAt
		s.mu.Unlock()
		if !startedAt.IsZero() {
			metrics.StatusTransitionLatency.WithLabelValues(s.svc).Observe(time.Since(startedAt).Seconds())
		}
	}
	s.w.set(st)
}

// Get returns the most recently observed status.
func (s *StatusWatcher) Get() service.Status { return s.w.get() }

// WaitFor blocks until the status reaches want, ctx is done, or timeout
// (if positive) elapses. On expiry or cancellation it returns the current
// status alongside the error, without modifying anything.
func (s *StatusWatcher) WaitFor(ctx context.Context, want service.Status, timeout time.Duration) (service.Status, error) {
	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		cur, _ := s.w.versioned()
		if cur == want {
			return cur, nil
		}
		changed := s.w.changed()
		select {
		case <-changed:
			continue
		case <-deadline:
			return s.w.get(), context.DeadlineExceeded
		case <-ctx.Done():
			return s.w.get(), ctx.Err()
		}
	}
}
