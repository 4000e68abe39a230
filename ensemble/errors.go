// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

package ensemble

import (
	"errors"
	"fmt"
)

// Construction errors: fatal to a start attempt, never leave a slot
// Started. DuplicateIDError is raised at container build time (P1); the
// other two surface from a failed Start.
var (
	// ErrStateDerivationFailed wraps a failure from a service's StateFactory
	// when no persisted snapshot was available to fall back on.
	ErrStateDerivationFailed = errors.New("ensemble: state derivation from settings failed")

	// ErrInitFailed wraps a failure returned by a service's InitFunc.
	ErrInitFailed = errors.New("ensemble: service init failed")
)

// DuplicateIDError reports a service id registered more than once at
// container-build time.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("ensemble: duplicate service id %q", e.ID)
}

// Transport errors: surfaced to the caller across a relay or control
// command. The spec treats supervisor absence as unreachable and expects
// a panic (a programming error, not a recoverable condition); everything
// else here is a normal returned error.
var (
	// ErrDisconnected is returned by a relay send when its generation has
	// been retired (the receiving service has been stopped since the sender
	// was acquired) or by a relay receive against a closed channel.
	ErrDisconnected = errors.New("ensemble: relay disconnected")

	// ErrServiceNotRunning is returned by RequestRelay when the target slot
	// is Stopped. RequestStatus returns the watcher in either phase.
	ErrServiceNotRunning = errors.New("ensemble: service is not running")

	// ErrUnknownService is returned when an id does not name a registered
	// service.
	ErrUnknownService = errors.New("ensemble: unknown service id")
)

// Lifecycle errors, per the spec, cover a fuse-signal failure reaching the
// state observer and a sidecar-receive failure reclaiming the inbound
// relay. Both are structurally eliminated by this package's
// implementation choices: firing a fuse is just closing a channel (via
// sync.Once, so it cannot fail or double-close), and "reclaiming" a relay
// is a generation pointer swap rather than a channel receive (see
// relayGeneration in relay.go), so it cannot fail either. There is
// therefore no lifecycle-error variable to export here; a runner that
// wanted to reintroduce a fallible reclaim step (e.g. an OS-level handle
// instead of a channel) would log-and-proceed exactly as the spec
// describes, using the same pattern as the transport errors above.

// ErrSupervisorGone is panicked, not returned, when a control command is
// sent to a supervisor loop that has already exited its command loop
// (post-shutdown). The spec calls this unreachable by construction for a
// well-behaved caller: a handle obtained before shutdown should not be
// used after the caller's own wait_finished/Wait has returned.
var ErrSupervisorGone = errors.New("ensemble: supervisor is no longer running")
