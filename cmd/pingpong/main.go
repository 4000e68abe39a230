// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

// Command pingpong is the minimal two-service demo: A ticks once a unit
// and sends Ping to B; B replies Pong to A; A counts Pongs in its State
// and, once it reaches 30, shuts the whole runtime down. It exists to
// exercise the runtime core end to end against a concrete pair of
// services, the way the teacher's own small cmd/ binaries exercise one
// subsystem at a time.
package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/coriolis-labs/ensemble/ensemble"
	"github.com/coriolis-labs/ensemble/ensemble/service"
	"github.com/coriolis-labs/ensemble/internal/logging"
)

const (
	idPinger service.ID = "pinger"
	idPonger service.ID = "ponger"

	targetPongs = 30
)

// tickInterval is the pinger's send period. It is a var, not a const, so
// tests can shrink it rather than waiting out thirty real-time ticks.
var tickInterval = time.Second

type pingMsg struct{}
type pongMsg struct{}

// pingerState is published to the operator after every Pong; its Count
// is what scenario 1 asserts reaches 30 at shutdown.
type pingerState struct {
	Count int
}

type ponger struct {
	res *service.Resources
}

func newPonger(res *service.Resources, _ any) (service.Core, error) {
	return &ponger{res: res}, nil
}

func (p *ponger) Run(ctx context.Context) error {
	inbox := ensemble.Inbox[pingMsg](p.res)
	p.res.Status.NotifyReady()

	for {
		if _, err := inbox.Recv(ctx); err != nil {
			return nil
		}
		out, err := ensemble.Relay[pongMsg](ctx, p.res.Handle.(ensemble.ControlHandle), idPinger)
		if err != nil {
			continue
		}
		_ = out.Send(ctx, pongMsg{})
	}
}

type pinger struct {
	res   *service.Resources
	count int
}

func newPinger(res *service.Resources, initialState any) (service.Core, error) {
	st, _ := initialState.(pingerState)
	return &pinger{res: res, count: st.Count}, nil
}

func (p *pinger) Run(ctx context.Context) error {
	inbox := ensemble.Inbox[pongMsg](p.res)
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	p.res.Status.NotifyReady()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			handle := p.res.Handle.(ensemble.ControlHandle)
			out, err := ensemble.Relay[pingMsg](ctx, handle, idPonger)
			if err != nil {
				continue
			}
			if err := out.Send(ctx, pingMsg{}); err != nil {
				continue
			}
			if _, err := inbox.Recv(ctx); err != nil {
				return nil
			}
			p.count++
			p.res.PublishState(pingerState{Count: p.count})
			if p.count >= targetPongs {
				go func() { _ = handle.Shutdown(context.Background()) }()
				return nil
			}
		}
	}
}

// loggingOperator just logs every published pingerState; a real operator
// would persist it (see internal/operator/badger).
type loggingOperator struct {
	logger zerolog.Logger
}

func (o loggingOperator) TryLoad(context.Context, any) (any, bool, error) { return nil, false, nil }

func (o loggingOperator) Run(_ context.Context, state any) error {
	if st, ok := state.(pingerState); ok {
		o.logger.Info().Int("count", st.Count).Msg("pinger state published")
	}
	return nil
}

func main() {
	logger := logging.WithComponent("pingpong")

	b := ensemble.NewBuilder()
	ensemble.Register[pongMsg](b, service.Descriptor{
		ID:   idPonger,
		Init: newPonger,
	})
	ensemble.Register[pingMsg](b, service.Descriptor{
		ID:          idPinger,
		Init:        newPinger,
		NewOperator: func(any) service.StateOperator { return loggingOperator{logger: logger} },
		NewState:    func(any) (any, error) { return pingerState{}, nil },
	})

	ctx := context.Background()
	rt, handle, err := ensemble.New(ctx, b, ensemble.WithLogger(func(msg string, err error) {
		logger.Warn().Err(err).Msg(msg)
	}))
	if err != nil {
		logger.Error().Err(err).Msg("failed to build runtime")
		os.Exit(1)
	}

	if err := handle.StartAllServices(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to start services")
		os.Exit(1)
	}

	rt.Wait()
	logger.Info().Msg("pingpong finished")
}
