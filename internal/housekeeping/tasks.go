// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

package housekeeping

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/coriolis-labs/ensemble/internal/metrics"
)

// BadgerGCTask periodically runs value-log garbage collection against a
// Badger database opened by internal/operator/badger. It implements
// suture.Service (Serve(ctx) error): returning a non-nil error lets the
// tree apply its normal backoff-and-restart policy instead of the task
// silently going quiet.
type BadgerGCTask struct {
	db           *badger.DB
	interval     time.Duration
	discardRatio float64
}

// NewBadgerGCTask builds a task that calls db.RunValueLogGC every interval.
func NewBadgerGCTask(db *badger.DB, interval time.Duration, discardRatio float64) *BadgerGCTask {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if discardRatio <= 0 {
		discardRatio = 0.5
	}
	return &BadgerGCTask{db: db, interval: interval, discardRatio: discardRatio}
}

// Serve runs GC on a ticker until ctx is cancelled. Badger returns
// ErrNoRewrite when there was nothing worth compacting; that is not
// reported as a failure.
func (t *BadgerGCTask) Serve(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := t.db.RunValueLogGC(t.discardRatio); err != nil && err != badger.ErrNoRewrite {
				return err
			}
		}
	}
}

func (t *BadgerGCTask) String() string { return "badger-gc" }

// MetricsHeartbeat periodically samples the container's service ids
// against their status watchers and refreshes the per-service phase
// gauge, so a service that neither starts nor stops for a long stretch
// still has a fresh gauge sample between scrapes.
type MetricsHeartbeat struct {
	period  time.Duration
	collect func()
}

// NewMetricsHeartbeat builds a task that calls collect every period.
// collect is expected to read whatever status watchers it closed over
// and set metrics.ServicePhase accordingly; this package does not import
// the ensemble package itself to avoid coupling the maintenance tree to
// the runtime core's internals.
func NewMetricsHeartbeat(period time.Duration, collect func()) *MetricsHeartbeat {
	if period <= 0 {
		period = 30 * time.Second
	}
	return &MetricsHeartbeat{period: period, collect: collect}
}

func (t *MetricsHeartbeat) Serve(ctx context.Context) error {
	ticker := time.NewTicker(t.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			t.collect()
			metrics.CommandsProcessed.WithLabelValues("heartbeat").Inc()
		}
	}
}

func (t *MetricsHeartbeat) String() string { return "metrics-heartbeat" }
