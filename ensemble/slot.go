// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

package ensemble

import (
	"context"
	"fmt"

	"github.com/coriolis-labs/ensemble/ensemble/service"
)

// phase is the slot's Stopped/Started lifecycle phase. The supervisor is
// the sole writer of this field (see the container invariant); a slot's
// methods are only ever invoked from the supervisor goroutine, which is
// what lets the whole package avoid a per-slot mutex.
type phase int

const (
	phaseStopped phase = iota
	phaseStarted
)

// slot is the runner (C5): one service's resources record plus the state
// machine that drives it between Stopped and Started.
type slot struct {
	desc     service.Descriptor
	operator service.StateOperator

	settings *settingsCell
	status   *StatusWatcher
	state    *stateStream

	ph   phase
	gen  *relayGeneration
	fuse *fuse

	userDone     chan struct{}
	observerDone chan struct{}
	cancelUser   context.CancelFunc

	logf func(msg string, err error)

	// selfStop lets a finished user task request its own stop without
	// re-entering slot methods from inside the very goroutine those
	// methods would need to join; it enqueues a command through the
	// supervisor instead of calling back into the slot directly.
	selfStop func(id service.ID)
}

func newSlot(desc service.Descriptor, selfStop func(service.ID), logf func(string, error)) *slot {
	return &slot{
		desc:     desc,
		operator: desc.NewOperator(desc.InitialSettings),
		settings: newSettingsCell(desc.InitialSettings),
		status:   newStatusWatcher(string(desc.ID)),
		state:    newStateStream(),
		ph:       phaseStopped,
		selfStop: selfStop,
		logf:     logf,
	}
}

// start performs the Stopped -> Started transition. A non-nil error leaves
// the slot exactly as it was: Stopped, no live tasks.
func (s *slot) start(ctx context.Context, handle service.Handle) error {
	if s.ph == phaseStarted {
		s.logf(fmt.Sprintf("service %s is already running", s.desc.ID), nil)
		return nil
	}

	initialState, err := s.resolveInitialState(ctx)
	if err != nil {
		return err
	}

	gen := newRelayGeneration(s.desc.RelayBufferSize, string(s.desc.ID))

	res := &service.Resources{
		Inbound:      gen.ch,
		Status:       service.NewReadyNotifier(s.status.set),
		Settings:     s.settings.reader(),
		PublishState: s.state.publish,
		Handle:       handle,
	}

	core, err := s.desc.Init(res, initialState)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInitFailed, s.desc.ID, err)
	}

	s.state.publish(initialState)
	s.status.set(service.Starting)

	userCtx, cancel := context.WithCancel(context.Background())
	s.cancelUser = cancel
	s.userDone = make(chan struct{})
	s.observerDone = make(chan struct{})
	svcFuse := newFuse()

	id := s.desc.ID
	userDone := s.userDone
	go func() {
		defer close(userDone)
		if runErr := core.Run(userCtx); runErr != nil {
			s.logf(fmt.Sprintf("service %s run returned an error", id), runErr)
		}
		// Self-stop: a finished user task always asks for its own
		// teardown, whether it returned cleanly or with an error, so the
		// single stop path (fuse drain, task abort, relay retirement,
		// status Stopped) runs uniformly regardless of why it exited.
		s.selfStop(id)
	}()

	observerDone := s.observerDone
	go func() {
		defer close(observerDone)
		s.state.observe(context.Background(), string(id), s.operator, svcFuse.done(), s.logf)
	}()

	s.gen = gen
	s.ph = phaseStarted
	s.fuse = svcFuse
	return nil
}

func (s *slot) resolveInitialState(ctx context.Context) (any, error) {
	settings := s.settings.get()
	if loaded, ok, err := s.operator.TryLoad(ctx, settings); err != nil {
		s.logf(fmt.Sprintf("service %s state load failed, deriving state from settings", s.desc.ID), err)
	} else if ok {
		return loaded, nil
	}

	derived, err := s.desc.NewState(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStateDerivationFailed, s.desc.ID, err)
	}
	return derived, nil
}

// stop performs the Started -> Stopped transition. It always succeeds:
// none of its steps (firing the fuse, joining both tasks, retiring the
// relay generation) can fail, so it returns nothing and logs only the
// already-stopped notice.
func (s *slot) stop() {
	if s.ph == phaseStopped {
		s.logf(fmt.Sprintf("service %s is already stopped", s.desc.ID), nil)
		return
	}

	s.fuse.fire()
	<-s.observerDone

	select {
	case <-s.userDone:
		// already exited on its own (e.g. this stop is the self-stop path)
	default:
		s.cancelUser()
		<-s.userDone
	}

	s.gen.retire()
	s.status.set(service.Stopped)

	s.cancelUser = nil
	s.userDone = nil
	s.observerDone = nil
	s.fuse = nil
	s.ph = phaseStopped
}
