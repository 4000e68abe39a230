// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

package housekeeping

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// TreeConfig holds supervisor tree configuration.
type TreeConfig struct {
	// FailureThreshold is the number of failures before entering backoff.
	FailureThreshold float64

	// FailureDecay is the rate at which failures decay, in seconds.
	FailureDecay float64

	// FailureBackoff is the duration to wait once the threshold is exceeded.
	FailureBackoff time.Duration

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout time.Duration
}

// DefaultTreeConfig returns suture's own production defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// Tree is the auxiliary background-task supervisor. It runs entirely
// outside the runtime core's single-goroutine supervisor loop (C2): every
// service registered with ensemble.Builder is a cooperative, ctx-cancelled
// task driven by exactly one command queue, and that invariant would break
// if anything else restarted those goroutines out from under it. Tree
// exists for best-effort maintenance work that has no business being a
// registered ensemble service — state-operator storage compaction, a
// metrics heartbeat — where an automatic Erlang/OTP-style restart on
// failure is the right behavior instead of a container-visible Stopped
// service.
type Tree struct {
	root        *suture.Supervisor
	maintenance *suture.Supervisor
	logger      *slog.Logger
	config      TreeConfig
}

// NewTree builds a two-layer tree: a root supervisor holding one
// "maintenance" child supervisor. The split exists so a future second
// layer (e.g. an "observability" group) can be added without touching
// callers of AddMaintenanceTask.
func NewTree(logger *slog.Logger, config TreeConfig) *Tree {
	if config.FailureThreshold == 0 {
		config.FailureThreshold = 5.0
	}
	if config.FailureDecay == 0 {
		config.FailureDecay = 30.0
	}
	if config.FailureBackoff == 0 {
		config.FailureBackoff = 15 * time.Second
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 10 * time.Second
	}

	handler := &sutureslog.Handler{Logger: logger}
	eventHook := handler.MustHook()

	rootSpec := suture.Spec{
		EventHook:        eventHook,
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	}
	childSpec := suture.Spec{
		FailureThreshold: config.FailureThreshold,
		FailureDecay:     config.FailureDecay,
		FailureBackoff:   config.FailureBackoff,
		Timeout:          config.ShutdownTimeout,
	}

	root := suture.New("ensemble-housekeeping", rootSpec)
	maintenance := suture.New("maintenance", childSpec)
	root.Add(maintenance)

	return &Tree{root: root, maintenance: maintenance, logger: logger, config: config}
}

// AddMaintenanceTask registers a background task. Returns a token usable
// with Remove.
func (t *Tree) AddMaintenanceTask(svc suture.Service) suture.ServiceToken {
	return t.maintenance.Add(svc)
}

// Remove stops and removes a previously added task.
func (t *Tree) Remove(token suture.ServiceToken) error {
	return t.maintenance.Remove(token)
}

// Serve starts the tree and blocks until ctx is cancelled.
func (t *Tree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// ServeBackground starts the tree in a background goroutine, returning a
// channel that receives the terminal error (or nil) once it stops.
func (t *Tree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport reports tasks that failed to stop within the
// configured shutdown timeout.
func (t *Tree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
