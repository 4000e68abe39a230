// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"golang.org/x/time/rate"

	"github.com/coriolis-labs/ensemble/internal/logging"
	"github.com/coriolis-labs/ensemble/internal/metrics"
)

// MiddlewareConfig configures the control surface's CORS and rate-limit
// behavior, mirroring the ambient stack's chi+cors+httprate combination.
type MiddlewareConfig struct {
	CORSOrigins       []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// corsHandler builds a go-chi/cors middleware for the configured origins.
func corsHandler(cfg MiddlewareConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// rateLimit builds a per-IP httprate limiter over the configured window.
func rateLimit(cfg MiddlewareConfig) func(http.Handler) http.Handler {
	requests := cfg.RateLimitRequests
	if requests <= 0 {
		requests = 60
	}
	window := cfg.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}
	return httprate.Limit(requests, window, httprate.WithKeyFuncs(httprate.KeyByIP))
}

// requestIDWithLogging tags every request with a correlation id carried
// through internal/logging's context helpers, so log lines from the
// control surface down into the runtime core share one id per request.
func requestIDWithLogging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		wrapped := chimiddleware.RequestID(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := logging.ContextWithNewCorrelationID(r.Context())
			wrapped.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// wsUpgradeLimiter throttles the websocket upgrade path independently of
// the general per-route httprate limiter, using x/time/rate's token
// bucket — each open connection is much more expensive to the server than
// one ordinary request, so it gets its own, stricter budget.
func wsUpgradeLimiter(rps float64, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				http.Error(w, "too many websocket upgrades", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type ctxKey int

const claimsCtxKey ctxKey = iota

// requireBearer authenticates a request either by the raw configured
// bearer token or by a JWT minted from it, and stamps the command-kind
// label onto metrics.CommandsProcessed for every authenticated call.
func requireBearer(tm *TokenManager, command string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authz, "Bearer ")
			if !ok || token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			if claims, err := tm.Verify(token); err == nil {
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsCtxKey, claims)))
				metrics.CommandsProcessed.WithLabelValues(command).Inc()
				return
			}

			if tm.VerifyBearer(token) {
				next.ServeHTTP(w, r)
				metrics.CommandsProcessed.WithLabelValues(command).Inc()
				return
			}

			http.Error(w, "invalid bearer token", http.StatusUnauthorized)
		})
	}
}
