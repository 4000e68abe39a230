// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

package config

import "time"

// Config is the root settings object loaded once at process startup and
// fanned out to the runtime's services at container-build time. Each
// section maps to one component of the ambient/domain stack; a service's
// own Descriptor.InitialSettings is typically one of these sections, not
// the whole struct.
type Config struct {
	Log          LogConfig          `koanf:"log" validate:"required"`
	Server       ServerConfig       `koanf:"server" validate:"required"`
	ControlAPI   ControlAPIConfig   `koanf:"control_api" validate:"required"`
	Operator     OperatorConfig     `koanf:"operator" validate:"required"`
	Housekeeping HousekeepingConfig `koanf:"housekeeping" validate:"required"`
	HostMetrics  HostMetricsConfig  `koanf:"host_metrics"`
}

// LogConfig configures the zerolog sink.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Pretty bool   `koanf:"pretty"`
}

// ServerConfig configures the internal/httpapi control surface.
type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	RatePerSecond   float64       `koanf:"rate_per_second"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// ControlAPIConfig configures bearer-token auth on the HTTP control
// surface. BearerToken is hashed with bcrypt at startup (see
// internal/httpapi) and never logged.
type ControlAPIConfig struct {
	BearerToken string `koanf:"bearer_token"`
	JWTIssuer   string `koanf:"jwt_issuer"`
}

// OperatorConfig configures the Badger-backed StateOperator.
type OperatorConfig struct {
	Path           string        `koanf:"path" validate:"required"`
	GCInterval     time.Duration `koanf:"gc_interval"`
	GCDiscardRatio float64       `koanf:"gc_discard_ratio"`
}

// HousekeepingConfig configures the auxiliary suture-supervised task tree.
type HousekeepingConfig struct {
	Enabled          bool          `koanf:"enabled"`
	HeartbeatPeriod  time.Duration `koanf:"heartbeat_period"`
	BackoffAfterFail time.Duration `koanf:"backoff_after_fail"`
}

// HostMetricsConfig configures the gopsutil-backed demo service.
type HostMetricsConfig struct {
	Enabled      bool          `koanf:"enabled"`
	PollInterval time.Duration `koanf:"poll_interval"`
}

// defaultConfig returns sensible defaults, applied first and then
// overridden by config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Pretty: false,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RatePerSecond:   50,
			CORSOrigins:     []string{"*"},
		},
		ControlAPI: ControlAPIConfig{
			BearerToken: "",
			JWTIssuer:   "ensemble",
		},
		Operator: OperatorConfig{
			Path:           "/data/ensemble/badger",
			GCInterval:     10 * time.Minute,
			GCDiscardRatio: 0.5,
		},
		Housekeeping: HousekeepingConfig{
			Enabled:          true,
			HeartbeatPeriod:  30 * time.Second,
			BackoffAfterFail: 5 * time.Second,
		},
		HostMetrics: HostMetricsConfig{
			Enabled:      true,
			PollInterval: 5 * time.Second,
		},
	}
}
