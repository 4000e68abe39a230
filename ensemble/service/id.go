// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

package service

// ID identifies one service slot inside a container. The set of valid IDs
// is closed at container-build time: it is whatever constants the caller
// declares when registering services, not something the runtime invents.
// IDs are compared by value and used as map keys, so two services must
// never share one.
type ID string

// String satisfies fmt.Stringer so IDs read cleanly in log fields and
// diagnostics without an explicit conversion.
func (id ID) String() string { return string(id) }
