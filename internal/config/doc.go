// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

// Package config loads Ensemble's root settings object from defaults, an
// optional YAML file, and environment variables (in that priority order)
// using koanf. The loaded Config is validated once, then its sections are
// handed to individual services as their Descriptor.InitialSettings.
package config
