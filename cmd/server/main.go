// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

// Command server is the full demo process: it loads configuration, wires
// every ambient and domain component around a running ensemble.Runtime,
// serves the HTTP control surface, and shuts down cleanly on SIGINT/SIGTERM.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"

	"github.com/coriolis-labs/ensemble/ensemble"
	"github.com/coriolis-labs/ensemble/ensemble/service"
	"github.com/coriolis-labs/ensemble/internal/breaker"
	"github.com/coriolis-labs/ensemble/internal/config"
	"github.com/coriolis-labs/ensemble/internal/hostmetrics"
	"github.com/coriolis-labs/ensemble/internal/housekeeping"
	"github.com/coriolis-labs/ensemble/internal/httpapi"
	"github.com/coriolis-labs/ensemble/internal/logging"
	"github.com/coriolis-labs/ensemble/internal/metrics"
	badgerop "github.com/coriolis-labs/ensemble/internal/operator/badger"
)

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Init(logging.DefaultConfig())
		logging.Error().Err(err).Msg("failed to load configuration")
		os.Exit(1)
	}

	logConfig := logging.DefaultConfig()
	logConfig.Level = cfg.Log.Level
	if cfg.Log.Pretty {
		logConfig.Format = "console"
	}
	logging.Init(logConfig)
	logger := logging.WithComponent("server")

	db, err := badgerop.Open(cfg.Operator.Path)
	if err != nil {
		logger.Error().Err(err).Msg("failed to open badger operator store")
		os.Exit(1)
	}
	defer db.Close()

	b := ensemble.NewBuilder()

	if cfg.HostMetrics.Enabled {
		hostmetricsOperator := func(any) service.StateOperator {
			inner := badgerop.NewFactory(db, "hostmetrics", decodeHostmetricsSnapshot)(nil)
			return breaker.Wrap("hostmetrics", inner, 5)
		}
		ensemble.Register[struct{}](b, service.Descriptor{
			ID:              service.ID("hostmetrics"),
			Init:            hostmetrics.Init,
			NewState:        hostmetrics.NewState,
			NewOperator:     hostmetricsOperator,
			InitialSettings: hostmetrics.Settings{PollInterval: cfg.HostMetrics.PollInterval},
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	var tree *housekeeping.Tree
	if cfg.Housekeeping.Enabled {
		tree = housekeeping.NewTree(logging.NewSlogLogger(), housekeeping.TreeConfig{
			FailureBackoff: cfg.Housekeeping.BackoffAfterFail,
		})
		tree.AddMaintenanceTask(housekeeping.NewBadgerGCTask(db, cfg.Operator.GCInterval, cfg.Operator.GCDiscardRatio))
		tree.AddMaintenanceTask(housekeeping.NewMetricsHeartbeat(cfg.Housekeeping.HeartbeatPeriod, func() {
			collectServicePhases(ctx, handle)
		}))
		go func() {
			if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
				logger.Warn().Err(err).Msg("housekeeping tree exited")
			}
		}()
	}

	tm, err := httpapi.NewTokenManager(cfg.ControlAPI.JWTIssuer, signingSecretFromEnv(), cfg.ControlAPI.BearerToken, time.Hour)
	if err != nil {
		logger.Error().Err(err).Msg("failed to build token manager")
		os.Exit(1)
	}

	httpServer := httpapi.NewServer(handle, tm, httpapi.MiddlewareConfig{
		CORSOrigins:       cfg.Server.CORSOrigins,
		RateLimitRequests: int(cfg.Server.RatePerSecond),
		RateLimitWindow:   time.Second,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      httpServer,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("control surface listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("control surface stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	_ = handle.Shutdown(shutdownCtx)
	rt.Wait()

	if tree != nil {
		if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
			logger.Warn().Int("count", len(report)).Msg("housekeeping tasks did not stop cleanly")
		}
	}

	logger.Info().Msg("server shut down cleanly")
}

func collectServicePhases(ctx context.Context, handle ensemble.ControlHandle) {
	ids, err := handle.RetrieveServiceIDs(ctx)
	if err != nil {
		return
	}
	for _, id := range ids {
		watcher, err := handle.StatusWatcherFor(ctx, id)
		if err != nil {
			continue
		}
		metrics.ServicePhase.WithLabelValues(string(id)).Set(float64(watcher.Get()))
	}
}

func decodeHostmetricsSnapshot(data []byte) (any, error) {
	var snap hostmetrics.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// signingSecretFromEnv reads the control API's JWT signing secret. A real
// deployment must set this; the fallback exists only so the demo binary
// still runs with a config file that has no secret section at all.
func signingSecretFromEnv() string {
	if secret := os.Getenv("ENSEMBLE_JWT_SIGNING_SECRET"); secret != "" {
		return secret
	}
	return "insecure-development-signing-secret-change-me"
}
