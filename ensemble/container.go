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

// Builder accumulates service descriptors before a container is built. It
// exists only to collect registrations and catch duplicate ids at build
// time (P1); nothing about it is safe for concurrent use, since it is
// meant to be used once, synchronously, before New is called.
type Builder struct {
	order []service.ID
	descs map[service.ID]service.Descriptor
	err   error
}

// NewBuilder returns an empty container builder.
func NewBuilder() *Builder {
	return &Builder{descs: make(map[service.ID]service.Descriptor)}
}

// Register adds one service descriptor. It is the type-erased registration
// path; see the generic Register function for the ergonomic typed wrapper
// most callers should use instead.
func (b *Builder) Register(d service.Descriptor) *Builder {
	if b.err != nil {
		return b
	}
	if _, exists := b.descs[d.ID]; exists {
		b.err = &DuplicateIDError{ID: string(d.ID)}
		return b
	}
	if d.RelayBufferSize <= 0 {
		d.RelayBufferSize = 16
	}
	if d.NewOperator == nil {
		d.NewOperator = service.NoOperatorFactory
	}
	if d.NewState == nil {
		d.NewState = service.NoStateFactory
	}
	b.order = append(b.order, d.ID)
	b.descs[d.ID] = d
	return b
}

// container is the service container (C4): a typed record of every
// registered service's slot, dispatched by id. It is touched only from
// the supervisor goroutine.
type container struct {
	order []service.ID
	slots map[service.ID]*slot
}

func buildContainer(b *Builder, selfStop func(service.ID), logf func(string, error)) (*container, error) {
	if b.err != nil {
		return nil, b.err
	}
	c := &container{
		order: append([]service.ID(nil), b.order...),
		slots: make(map[service.ID]*slot, len(b.order)),
	}
	for _, id := range b.order {
		c.slots[id] = newSlot(b.descs[id], selfStop, logf)
	}
	return c, nil
}

func (c *container) slot(id service.ID) (*slot, error) {
	s, ok := c.slots[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownService, id)
	}
	return s, nil
}

func (c *container) start(ctx context.Context, id service.ID, handle service.Handle) error {
	s, err := c.slot(id)
	if err != nil {
		return err
	}
	return s.start(ctx, handle)
}

func (c *container) stop(id service.ID) error {
	s, err := c.slot(id)
	if err != nil {
		return err
	}
	s.stop()
	return nil
}

func (c *container) startSequence(ctx context.Context, ids []service.ID, handle service.Handle) error {
	for _, id := range ids {
		if err := c.start(ctx, id, handle); err != nil {
			return err
		}
	}
	return nil
}

func (c *container) stopSequence(ids []service.ID) error {
	for _, id := range ids {
		if err := c.stop(id); err != nil {
			return err
		}
	}
	return nil
}

func (c *container) startAll(ctx context.Context, handle service.Handle) error {
	return c.startSequence(ctx, c.order, handle)
}

func (c *container) stopAll() error {
	return c.stopSequence(c.order)
}

// teardown aborts every live task without waiting for a clean stop. It is
// the best-effort path invoked once during shutdown after stopAll has
// already been attempted, for any slot that is still Started despite that
// (e.g. a stop that this process never got to run).
func (c *container) teardown() {
	for _, id := range c.order {
		s := c.slots[id]
		if s.ph != phaseStarted {
			continue
		}
		if s.fuse != nil {
			s.fuse.fire()
		}
		if s.cancelUser != nil {
			s.cancelUser()
		}
	}
}

func (c *container) requestRelay(id service.ID) (any, error) {
	s, err := c.slot(id)
	if err != nil {
		return nil, err
	}
	if s.ph != phaseStarted {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotRunning, id)
	}
	return Outbound[any]{gen: s.gen}, nil
}

func (c *container) requestStatus(id service.ID) (*StatusWatcher, error) {
	s, err := c.slot(id)
	if err != nil {
		return nil, err
	}
	return s.status, nil
}

func (c *container) updateSettings(settings map[service.ID]any) {
	for id, v := range settings {
		if s, ok := c.slots[id]; ok {
			s.settings.set(v)
		}
	}
}

func (c *container) ids() []service.ID {
	return append([]service.ID(nil), c.order...)
}
