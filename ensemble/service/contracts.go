// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

// Package service defines the contract user code implements to become an
// Ensemble service: the associated Settings/State/StateOperator/Message
// types, the Core lifecycle (Init/Run), and the resources handle a service
// body receives at start.
package service

import "context"

// Core is the lifecycle a service body implements. Init performs one-time
// setup against the initial state and returns the object whose Run will be
// spawned as the service's long-running task. Run is expected to block
// until its context is cancelled (a Stop command) or it decides to exit on
// its own; either way, returning ends the service and drives a self-stop.
type Core interface {
	Run(ctx context.Context) error
}

// InitFunc builds a Core from its resources handle and initial state. A
// non-nil error here is fatal to the start attempt: the slot is left
// Stopped, never partially Started.
type InitFunc func(res *Resources, initialState any) (Core, error)

// StateOperator is user code that reacts to state snapshots, typically by
// persisting them. TryLoad is called exactly once per start transition,
// before Init runs; Run is called for every snapshot the service body
// publishes while started.
type StateOperator interface {
	// TryLoad attempts to read a previously persisted snapshot. ok is false
	// when there is nothing to load (not an error).
	TryLoad(ctx context.Context, settings any) (state any, ok bool, err error)
	// Run persists or otherwise acts on one state snapshot.
	Run(ctx context.Context, state any) error
}

// OperatorFactory constructs a StateOperator from a service's settings.
type OperatorFactory func(settings any) StateOperator

// StateFactory derives an initial state from settings when the operator has
// no persisted snapshot to offer.
type StateFactory func(settings any) (any, error)

// NoOperator is a StateOperator that persists nothing. It is the default
// for services that declare no meaningful state.
type NoOperator struct{}

// TryLoad always reports no snapshot available.
func (NoOperator) TryLoad(context.Context, any) (any, bool, error) { return nil, false, nil }

// Run discards the snapshot.
func (NoOperator) Run(context.Context, any) error { return nil }

// NoOperatorFactory adapts NoOperator to an OperatorFactory.
func NoOperatorFactory(any) StateOperator { return NoOperator{} }

// NoState is the zero state for services that track nothing.
type NoState struct{}

// NoStateFactory derives the empty state, unconditionally successfully.
func NoStateFactory(any) (any, error) { return NoState{}, nil }
