// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

package ensemble

import (
	"context"

	"github.com/coriolis-labs/ensemble/ensemble/service"
)

// ControlHandle is the control handle (C3): a cloneable façade over the
// command queue. It is a small value type (one pointer) so copying it
// around — into every service's Resources, into HTTP handlers, into
// goroutines spawned off Runtime.Spawn — is cheap and safe. Every method
// suspends until the supervisor has processed its command or ctx is done;
// because the supervisor runs commands one at a time in arrival order,
// that wait includes any commands other callers queued ahead of it.
type ControlHandle struct {
	sv *supervisor
}

var _ service.Handle = ControlHandle{}

type relayResult struct {
	v   any
	err error
}

// RequestRelay returns the type-erased outbound sender for id. Use the
// package-level Relay function for the typed wrapper.
func (h ControlHandle) RequestRelay(ctx context.Context, id service.ID) (any, error) {
	reply := make(chan relayResult, 1)
	h.sv.enqueue(func(context.Context) bool {
		v, err := h.sv.container.requestRelay(id)
		reply <- relayResult{v, err}
		return false
	})
	select {
	case r := <-reply:
		return r.v, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type statusResult struct {
	v   *StatusWatcher
	err error
}

// RequestStatus returns the status watcher for id.
func (h ControlHandle) RequestStatus(ctx context.Context, id service.ID) (any, error) {
	reply := make(chan statusResult, 1)
	h.sv.enqueue(func(context.Context) bool {
		v, err := h.sv.container.requestStatus(id)
		reply <- statusResult{v, err}
		return false
	})
	select {
	case r := <-reply:
		return r.v, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// StatusWatcherFor is a typed convenience wrapper over RequestStatus: the
// status watcher's concrete type never varies by service, so no downcast
// panic path is needed here, unlike the message-typed Relay below.
func (h ControlHandle) StatusWatcherFor(ctx context.Context, id service.ID) (*StatusWatcher, error) {
	v, err := h.RequestStatus(ctx, id)
	if err != nil {
		return nil, err
	}
	return v.(*StatusWatcher), nil
}

func (h ControlHandle) lifecycle(ctx context.Context, op func(ctx context.Context) error) error {
	errCh := make(chan error, 1)
	h.sv.enqueue(func(cctx context.Context) bool {
		errCh <- op(cctx)
		return false
	})
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StartService transitions one service Stopped -> Started. Idempotent.
func (h ControlHandle) StartService(ctx context.Context, id service.ID) error {
	return h.lifecycle(ctx, func(cctx context.Context) error {
		return h.sv.container.start(cctx, id, h)
	})
}

// StopService transitions one service Started -> Stopped. Idempotent.
func (h ControlHandle) StopService(ctx context.Context, id service.ID) error {
	return h.lifecycle(ctx, func(context.Context) error {
		return h.sv.container.stop(id)
	})
}

// StartServiceSequence starts each id in order, awaiting each before the
// next, stopping at the first error.
func (h ControlHandle) StartServiceSequence(ctx context.Context, ids []service.ID) error {
	return h.lifecycle(ctx, func(cctx context.Context) error {
		return h.sv.container.startSequence(cctx, ids, h)
	})
}

// StopServiceSequence stops each id in order.
func (h ControlHandle) StopServiceSequence(ctx context.Context, ids []service.ID) error {
	return h.lifecycle(ctx, func(context.Context) error {
		return h.sv.container.stopSequence(ids)
	})
}

// StartAllServices starts every registered service in declaration order.
func (h ControlHandle) StartAllServices(ctx context.Context) error {
	return h.lifecycle(ctx, func(cctx context.Context) error {
		return h.sv.container.startAll(cctx, h)
	})
}

// StopAllServices stops every registered service in declaration order.
func (h ControlHandle) StopAllServices(ctx context.Context) error {
	return h.lifecycle(ctx, func(context.Context) error {
		return h.sv.container.stopAll()
	})
}

// UpdateSettings fans a new settings value out to each named service's
// settings cell. This is the Go-idiomatic stand-in for downcasting one
// whole type-erased container-settings struct: instead of a single
// generated struct split by field, the caller supplies a map keyed by the
// same closed id set the container was built with, and each value stays
// opaque until the receiving service's own Init unpacks it.
func (h ControlHandle) UpdateSettings(ctx context.Context, settings map[service.ID]any) error {
	done := make(chan struct{})
	h.sv.enqueue(func(context.Context) bool {
		h.sv.container.updateSettings(settings)
		close(done)
		return false
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RetrieveServiceIDs enumerates every registered service id.
func (h ControlHandle) RetrieveServiceIDs(ctx context.Context) ([]service.ID, error) {
	reply := make(chan []service.ID, 1)
	h.sv.enqueue(func(context.Context) bool {
		reply <- h.sv.container.ids()
		return false
	})
	select {
	case ids := <-reply:
		return ids, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Shutdown drains every service (stop_all), tears down anything left
// alive, then terminates the supervisor loop. Once the returned error is
// nil, Runtime.Wait unblocks; once Wait has returned, any further
// ControlHandle call panics with ErrSupervisorGone.
func (h ControlHandle) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	h.sv.enqueue(func(context.Context) bool {
		h.sv.container.stopAll()
		h.sv.container.teardown()
		close(done)
		return true
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Relay requests the outbound sender for id and rewraps it for the
// caller's message type M. The reply is always an Outbound[any] (see
// container.requestRelay), so the downcast below cannot fail and its panic
// is only an assertion. M itself is not checked against the message type
// the service was registered with: a wrong M is still delivered, and the
// mismatch surfaces as a panic in the receiving service's Inbox[M].Recv.
func Relay[M any](ctx context.Context, h ControlHandle, id service.ID) (Outbound[M], error) {
	v, err := h.RequestRelay(ctx, id)
	if err != nil {
		return Outbound[M]{}, err
	}
	boxed, ok := v.(Outbound[any])
	if !ok {
		panic("ensemble: relay reply downcast failed for " + string(id))
	}
	return Outbound[M]{gen: boxed.gen}, nil
}

// Inbox wraps a Resources.Inbound channel with the service's typed Recv,
// for use inside Init/Run bodies.
func Inbox[M any](res *service.Resources) Inbound[M] {
	return Inbound[M]{ch: res.Inbound}
}
