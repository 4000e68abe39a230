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

type pollerSettings struct{ value int }

// P7 / scenario 4: after UpdateSettings, every reader observes the new
// value on its next poll.
func TestSettingsFanOut(t *testing.T) {
	observed := make(chan int, 32)
	init := func(res *service.Resources, _ any) (service.Core, error) {
		return &settingsPoller{res: res, out: observed}, nil
	}

	b := NewBuilder()
	Register[struct{}](b, service.Descriptor{
		ID:              "poller",
		Init:            init,
		InitialSettings: pollerSettings{value: 1},
	})

	ctx := context.Background()
	rt, handle, err := New(ctx, b)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = handle.Shutdown(ctx); rt.Wait() }()

	if err := handle.StartService(ctx, "poller"); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Drain a few polls of the initial value before updating.
	for i := 0; i < 2; i++ {
		select {
		case v := <-observed:
			if v != 1 {
				t.Fatalf("expected initial value 1, got %d", v)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for initial poll")
		}
	}

	if err := handle.UpdateSettings(ctx, map[service.ID]any{"poller": pollerSettings{value: 2}}); err != nil {
		t.Fatalf("update settings: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case v := <-observed:
			if v == 2 {
				return
			}
		case <-deadline:
			t.Fatal("no poll ever observed the updated settings value")
		}
	}
}

type settingsPoller struct {
	res *service.Resources
	out chan<- int
}

func (p *settingsPoller) Run(ctx context.Context) error {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	p.res.Status.NotifyReady()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s, _ := p.res.Settings().(pollerSettings)
			select {
			case p.out <- s.value:
			default:
			}
		}
	}
}
