// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

// Package httpapi exposes ensemble.ControlHandle over HTTP: a thin
// REST surface for starting/stopping services, reading status, pushing
// settings updates, and draining the whole container, plus a websocket
// stream of one service's status transitions.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/coriolis-labs/ensemble/ensemble"
)

// Server wires a chi.Router around one ensemble.ControlHandle.
type Server struct {
	handle  ensemble.ControlHandle
	tm      *TokenManager
	handler http.Handler
}

// NewServer builds the router. cfg configures CORS/rate limiting; tm
// authenticates every route under /control.
func NewServer(handle ensemble.ControlHandle, tm *TokenManager, cfg MiddlewareConfig) *Server {
	s := &Server{handle: handle, tm: tm}

	r := chi.NewRouter()
	r.Use(requestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(corsHandler(cfg))

	r.Route("/healthz", func(r chi.Router) {
		r.Use(rateLimit(MiddlewareConfig{RateLimitRequests: 600, RateLimitWindow: time.Minute}))
		r.Get("/live", s.handleLive)
		r.Get("/ready", s.handleReady)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Get("/swagger/doc.json", s.handleSwaggerDoc)

	r.Route("/control", func(r chi.Router) {
		r.Use(rateLimit(cfg))
		r.Use(requireBearer(tm, "control"))

		r.Get("/services", s.handleListServices)
		r.Post("/services/start-all", s.handleStartAll)
		r.Post("/services/stop-all", s.handleStopAll)
		r.Post("/services/{id}/start", s.handleStart)
		r.Post("/services/{id}/stop", s.handleStop)
		r.Get("/services/{id}/status", s.handleStatus)
		r.Put("/settings", s.handleUpdateSettings)
		r.Post("/shutdown", s.handleShutdown)
		r.With(wsUpgradeLimiter(2, 4)).Get("/ws/status/{id}", s.handleStatusStream)
	})

	s.handler = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.handler.ServeHTTP(w, r) }

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.handle.RetrieveServiceIDs(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleSwaggerDoc(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(swaggerDoc))
}
