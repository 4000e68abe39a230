// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

package config

import (
	"fmt"

	"github.com/coriolis-labs/ensemble/internal/validation"
)

// Validate runs struct-tag validation over the fully-loaded config. It is
// the last step of LoadWithKoanf, after defaults/file/env have all been
// merged, so a bad value of any origin is caught in one place.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
