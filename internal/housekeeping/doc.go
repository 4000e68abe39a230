// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

/*
Package housekeeping provides best-effort process supervision for
background maintenance work using suture v4, deliberately separate from
the Ensemble runtime core's own supervisor loop.

The runtime core (see the root ensemble package) owns a single
command-queue goroutine per process; every registered service is a
cooperative task whose Stopped/Started transitions are entirely driven by
that queue. Giving those tasks suture-style automatic restart would
violate the core's "supervisor is the sole writer of slot state"
invariant — a suture restart happens without ever going through the
command queue.

housekeeping.Tree exists for the maintenance work that has no business
being a registered ensemble service at all: Badger value-log GC, a
metrics heartbeat, anything where "silently missed one tick, restarted
automatically, nobody needs to know" is the correct failure response.

# Usage

	logger := slog.Default()
	tree := housekeeping.NewTree(logger, housekeeping.DefaultTreeConfig())
	tree.AddMaintenanceTask(housekeeping.NewBadgerGCTask(db, 10*time.Minute, 0.5))
	go tree.Serve(ctx)
*/
package housekeeping
