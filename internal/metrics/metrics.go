// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the Ensemble runtime: control commands
// accepted by the HTTP control surface, per-service status, relay delivery
// failures, status-transition latency, and state-operator timing and errors.

var (
	// CommandsProcessed counts control commands by kind. The HTTP control
	// surface increments it once per authenticated call, labelled with the
	// route's command (start, stop, ...), and the housekeeping heartbeat
	// once per tick, labelled "heartbeat". The supervisor loop itself does
	// not increment it.
	CommandsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ensemble_commands_processed_total",
			Help: "Total number of authenticated control-API commands and housekeeping heartbeat ticks",
		},
		[]string{"command"},
	)

	// ServicePhase reports a service's current status as a gauge: 0 for
	// Stopped, 1 for Starting, 2 for Ready. cmd/server sets it from each
	// service's status watcher whenever the housekeeping heartbeat runs; it
	// is not updated on each transition.
	ServicePhase = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ensemble_service_phase",
			Help: "Current status of a service (0=stopped, 1=starting, 2=ready)",
		},
		[]string{"service"},
	)

	// RelaySendFailures counts Outbound.Send calls that returned
	// ErrDisconnected, by service id. A rising rate against one service
	// usually means a caller is holding a sender obtained before that
	// service's last restart.
	RelaySendFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ensemble_relay_send_failures_total",
			Help: "Total number of Outbound.Send calls that failed because the relay generation was retired",
		},
		[]string{"service"},
	)

	// StatusTransitionLatency measures the time between a service entering
	// Starting and reaching Ready, in seconds.
	StatusTransitionLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ensemble_status_starting_to_ready_seconds",
			Help:    "Time from a service entering Starting to announcing Ready",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	// StateOperatorRunDuration measures how long a StateOperator.Run call
	// takes, by service id.
	StateOperatorRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ensemble_state_operator_run_duration_seconds",
			Help:    "Duration of StateOperator.Run calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	// StateOperatorErrors counts failed StateOperator.TryLoad/Run calls.
	StateOperatorErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ensemble_state_operator_errors_total",
			Help: "Total number of StateOperator TryLoad/Run errors",
		},
		[]string{"service", "op"},
	)
)
