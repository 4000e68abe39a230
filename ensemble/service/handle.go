// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

package service

import "context"

// Handle is the minimal, type-erased view of the control surface that a
// service body is handed so it can reach other services or request its own
// shutdown. The ensemble package's ControlHandle implements this; callers
// that want a typed relay or status watcher use ensemble.Relay and
// ControlHandle.StatusWatcherFor, which take an ensemble.ControlHandle (a
// service body type-asserts its Handle to that type) and perform the
// downcast.
type Handle interface {
	// RequestRelay returns the boxed outbound sender (an
	// ensemble.Outbound[any] for the target service's relay) or an error
	// if the service is not running.
	RequestRelay(ctx context.Context, id ID) (any, error)
	// RequestStatus returns the boxed status watcher for id.
	RequestStatus(ctx context.Context, id ID) (any, error)
	// Shutdown drains and terminates the whole container.
	Shutdown(ctx context.Context) error
}

// Resources is the bundle a service body receives from Init. It is the Go
// analogue of a per-service resources handle: one inbound message stream,
// a restricted status notifier, a read-only settings view, a state
// publisher, and a handle back into the control surface.
type Resources struct {
	// Inbound delivers messages addressed to this service, boxed as any
	// (the concrete element type is the service's declared Message type).
	// Service bodies type-assert as they receive; see the generic Inbox
	// helper in the ensemble package for a typed wrapper.
	Inbound <-chan any

	// Status lets the body announce Ready exactly once initialization
	// completes. It cannot write Starting or Stopped.
	Status ReadyNotifier

	// Settings returns the current settings value; it always reflects the
	// most recently published update, with no history retained.
	Settings func() any

	// PublishState broadcasts a new state snapshot to the operator.
	PublishState func(any)

	// Handle reaches other services and the control surface.
	Handle Handle
}
