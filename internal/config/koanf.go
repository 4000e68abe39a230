// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order
// of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/ensemble/config.yaml",
	"/etc/ensemble/config.yml",
}

// ConfigPathEnvVar overrides the config file search with an explicit path.
const ConfigPathEnvVar = "ENSEMBLE_CONFIG_PATH"

// LoadWithKoanf loads configuration in three layers, lowest to highest
// priority:
//
//  1. Defaults: built-in sensible defaults (defaultConfig)
//  2. Config file: optional YAML file, first match from DefaultConfigPaths
//     or ENSEMBLE_CONFIG_PATH
//  3. Environment variables: override any setting (ENSEMBLE_ prefix)
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// ENSEMBLE_SERVER_ADDR -> server.addr, ENSEMBLE_LOG_LEVEL -> log.level
	envProvider := env.Provider("ENSEMBLE_", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths names the config paths that arrive as comma-separated
// strings from the environment but must be unmarshaled as slices.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps ENSEMBLE_-prefixed environment variable names to
// koanf dotted paths by stripping the prefix (the env provider passes the
// full variable name), lowercasing, and turning only the first underscore
// (the section separator) into a dot: ENSEMBLE_SERVER_ADDR -> server.addr,
// ENSEMBLE_OPERATOR_GC_INTERVAL -> operator.gc_interval. Every koanf
// struct tag in this package is a single section.field pair, so the
// field half is left with its underscores intact.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, "ENSEMBLE_"))
	if idx := strings.Index(key, "_"); idx >= 0 {
		return key[:idx] + "." + key[idx+1:]
	}
	return key
}
