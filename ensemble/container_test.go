// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

package ensemble

import (
	"context"
	"testing"
	"time"

	"github.com/coriolis-labs/ensemble/ensemble/service"
)

type noopCore struct{}

func (noopCore) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func noopInit(res *service.Resources, _ any) (service.Core, error) {
	return noopCore{}, nil
}

func blockingDescriptor(id service.ID) service.Descriptor {
	return service.Descriptor{ID: id, Init: noopInit}
}

// P1: building a container with duplicate service ids fails at build time.
func TestDuplicateServiceIDFailsAtBuild(t *testing.T) {
	b := NewBuilder()
	b.Register(blockingDescriptor("dup"))
	b.Register(blockingDescriptor("dup"))

	_, _, err := New(context.Background(), b)
	if err == nil {
		t.Fatal("expected a duplicate-id build error, got nil")
	}
	if _, ok := err.(*DuplicateIDError); !ok {
		t.Fatalf("expected *DuplicateIDError, got %T: %v", err, err)
	}
}

// P3: start(s); start(s) observably equals start(s); likewise stop.
func TestLifecycleIdempotence(t *testing.T) {
	b := NewBuilder()
	b.Register(blockingDescriptor("svc"))

	ctx := context.Background()
	rt, handle, err := New(ctx, b)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = handle.Shutdown(ctx); rt.Wait() }()

	if err := handle.StartService(ctx, "svc"); err != nil {
		t.Fatalf("first start: %v", err)
	}
	if err := handle.StartService(ctx, "svc"); err != nil {
		t.Fatalf("second start (idempotent): %v", err)
	}
	watcher, err := handle.StatusWatcherFor(ctx, "svc")
	if err != nil {
		t.Fatalf("status watcher: %v", err)
	}
	if got := watcher.Get(); got != service.Starting {
		t.Fatalf("expected Starting after idempotent starts, got %v", got)
	}

	if err := handle.StopService(ctx, "svc"); err != nil {
		t.Fatalf("first stop: %v", err)
	}
	if err := handle.StopService(ctx, "svc"); err != nil {
		t.Fatalf("second stop (idempotent): %v", err)
	}
	if got := watcher.Get(); got != service.Stopped {
		t.Fatalf("expected Stopped after idempotent stops, got %v", got)
	}
}

// restartMsg is the message type for TestRestartRoundTripGivesFreshRelayIdentity;
// it has to live at package scope so relayRecorder's Inbox[restartMsg] type
// assertion matches the exact type Register was called with.
type restartMsg struct{ n int }

// P4 / scenario 6: start; stop; start yields a fresh relay identity —
// senders acquired before the restart observe disconnection, senders
// acquired after it deliver to the new generation.
func TestRestartRoundTripGivesFreshRelayIdentity(t *testing.T) {
	received := make(chan int, 8)
	init := func(res *service.Resources, _ any) (service.Core, error) {
		return &relayRecorder{res: res, out: received}, nil
	}

	b := NewBuilder()
	Register[restartMsg](b, service.Descriptor{ID: "echo", Init: init})

	ctx := context.Background()
	rt, handle, err := New(ctx, b)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = handle.Shutdown(ctx); rt.Wait() }()

	if err := handle.StartService(ctx, "echo"); err != nil {
		t.Fatalf("start: %v", err)
	}
	firstSender, err := Relay[restartMsg](ctx, handle, "echo")
	if err != nil {
		t.Fatalf("first relay: %v", err)
	}

	if err := handle.StopService(ctx, "echo"); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := handle.StartService(ctx, "echo"); err != nil {
		t.Fatalf("restart: %v", err)
	}
	secondSender, err := Relay[restartMsg](ctx, handle, "echo")
	if err != nil {
		t.Fatalf("second relay: %v", err)
	}

	if err := firstSender.Send(ctx, restartMsg{n: 1}); err != ErrDisconnected {
		t.Fatalf("expected ErrDisconnected from the retired generation, got %v", err)
	}
	if err := secondSender.Send(ctx, restartMsg{n: 2}); err != nil {
		t.Fatalf("expected the fresh generation to accept a send, got %v", err)
	}

	select {
	case m := <-received:
		if m.n != 2 {
			t.Fatalf("expected only the post-restart message to be delivered, got %+v", m)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the post-restart message")
	}
}

type relayRecorder struct {
	res *service.Resources
	out chan<- int
}

func (r *relayRecorder) Run(ctx context.Context) error {
	inbox := Inbox[restartMsg](r.res)
	for {
		m, err := inbox.Recv(ctx)
		if err != nil {
			return nil
		}
		select {
		case r.out <- m.n:
		default:
		}
	}
}

// P9: after shutdown, Wait returns and no further command succeeds.
func TestShutdownDrains(t *testing.T) {
	b := NewBuilder()
	b.Register(blockingDescriptor("svc"))

	ctx := context.Background()
	rt, handle, err := New(ctx, b)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := handle.StartService(ctx, "svc"); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := handle.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	done := make(chan struct{})
	go func() { rt.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after Shutdown")
	}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic sending a command to a gone supervisor")
		}
		if err, ok := r.(error); !ok || err != ErrSupervisorGone {
			t.Fatalf("expected ErrSupervisorGone panic, got %v", r)
		}
	}()
	_, _ = handle.RequestStatus(ctx, "svc")
}
