// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

// Package breaker wraps a service.StateOperator's Run call with a circuit
// breaker, so a wedged storage backend (disk stall, compaction pile-up)
// trips open and fails fast instead of stalling a service's observer task
// indefinitely (spec.md's "Partial failures" — a stuck operator should
// degrade, not hang the whole slot).
package breaker

import (
	"context"
	"fmt"

	"github.com/sony/gobreaker/v2"

	"github.com/coriolis-labs/ensemble/ensemble/service"
)

// Operator decorates a service.StateOperator, routing only Run through a
// gobreaker.CircuitBreaker. TryLoad passes through unwrapped: it runs once,
// at start, before anything depends on low latency the way the ongoing
// Run stream does.
type Operator struct {
	inner service.StateOperator
	cb    *gobreaker.CircuitBreaker[any]
}

// Wrap builds a breaker-protected operator named name (used in the
// breaker's own logging/metrics), tripping after consecutiveFailures run
// of failures and staying open for the gobreaker default recovery window.
func Wrap(name string, inner service.StateOperator, consecutiveFailures uint32) *Operator {
	settings := gobreaker.Settings{
		Name: name,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= consecutiveFailures
		},
	}
	return &Operator{inner: inner, cb: gobreaker.NewCircuitBreaker[any](settings)}
}

func (o *Operator) TryLoad(ctx context.Context, settings any) (any, bool, error) {
	return o.inner.TryLoad(ctx, settings)
}

func (o *Operator) Run(ctx context.Context, state any) error {
	_, err := o.cb.Execute(func() (any, error) {
		return nil, o.inner.Run(ctx, state)
	})
	if err != nil {
		return fmt.Errorf("breaker: %w", err)
	}
	return nil
}

var _ service.StateOperator = (*Operator)(nil)
