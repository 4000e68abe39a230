// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

// Package metrics exposes Prometheus instrumentation for the Ensemble
// runtime: its HTTP control surface, its services and their state
// operators; application-level metrics belong to whatever service
// registers them, not to this package.
package metrics
