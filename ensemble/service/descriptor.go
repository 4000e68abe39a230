// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

package service

// Descriptor is the type-erased record produced once per service at
// container construction: the closed id, the relay buffer size, the
// construction functions for state/operator, and the Init entry point.
// Container builders fill this in from a typed registration call (see
// ensemble.Register); nothing here requires generics because the spec's
// own design embraces a type-erased payload in transit, downcast at the
// edges where a concrete type is actually needed.
type Descriptor struct {
	ID              ID
	RelayBufferSize int

	NewOperator OperatorFactory
	NewState    StateFactory
	Init        InitFunc

	// InitialSettings is the value fanned out to the settings cell at
	// construction and whenever no update has been issued yet.
	InitialSettings any
}
