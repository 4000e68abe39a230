// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

// Package validation provides struct validation using go-playground/validator v10.
//
// This package wraps the go-playground/validator library to provide a thread-safe
// singleton validator instance with user-friendly error messages, used by
// internal/config to reject a bad configuration in one place after defaults,
// file, and environment overrides have all been merged.
//
// # Overview
//
// The package provides:
//   - Thread-safe singleton validator (initialized once, cached struct info)
//   - Comprehensive error translation to human-readable messages
//   - APIError conversion for callers that surface validation over HTTP
//   - Future v11 compatibility with WithRequiredStructEnabled
//
// # Quick Start
//
//	type ServerConfig struct {
//	    Addr string `validate:"required"`
//	}
//
//	func (c *Config) Validate() error {
//	    if verr := validation.ValidateStruct(c); verr != nil {
//	        return fmt.Errorf("config validation failed: %w", verr)
//	    }
//	    return nil
//	}
//
// # Common Validation Tags
//
// String validations:
//   - required: Field must not be empty
//   - min=n: Minimum length n characters
//   - max=n: Maximum length n characters
//   - email: Valid email format
//   - url: Valid URL format
//   - base64url: URL-safe base64 encoding
//
// Numeric validations:
//   - gte=n: Greater than or equal to n
//   - lte=n: Less than or equal to n
//   - gt=n: Greater than n
//   - lt=n: Less than n
//   - min=n: Minimum value n
//   - max=n: Maximum value n
//
// Enum validations:
//   - oneof=a b c: Must be one of the specified values
//
// # Error Types
//
// ValidationError represents a single field validation failure:
//
//	type ValidationError struct {
//	    Field()   string      // Struct field name
//	    Tag()     string      // Validation tag that failed
//	    Param()   string      // Tag parameter (e.g., "100" for max=100)
//	    Value()   interface{} // Actual value that failed
//	    Error()   string      // Human-readable message
//	}
//
// RequestValidationError aggregates multiple field errors:
//
//	type RequestValidationError struct {
//	    Errors() []ValidationError
//	    Error()  string           // Combined message
//	    ToAPIError() *APIError    // Convert to API error format
//	}
//
// # API Error Integration
//
// The ToAPIError method produces a VALIDATION_ERROR code, message and
// details. internal/httpapi does not call it; the control API writes its
// own errors as {"error": "<message>"}. The shapes ToAPIError builds:
//
//	// Single field error
//	{
//	    "code": "VALIDATION_ERROR",
//	    "message": "Addr is required",
//	    "details": {"field": "Addr", "tag": "required", "value": ""}
//	}
//
//	// Multiple field errors
//	{
//	    "code": "VALIDATION_ERROR",
//	    "message": "Addr: Addr is required; Level: Level must be one of: debug info warn error",
//	    "details": {
//	        "fields": [
//	            {"field": "Addr", "tag": "required", "message": "..."},
//	            {"field": "Level", "tag": "oneof", "message": "..."}
//	        ]
//	    }
//	}
//
// # Error Message Translation
//
// Human-readable messages are generated for common validation tags:
//
//	required   -> "Addr is required"
//	email      -> "Email must be a valid email address"
//	min=3      -> "Username must be at least 3 characters"
//	max=100    -> "Description must be at most 100 characters"
//	gte=1      -> "Limit must be greater than or equal to 1"
//	lte=1000   -> "Limit must be less than or equal to 1000"
//	oneof=a b  -> "Level must be one of: a b"
//
// # Struct Tag Examples
//
// Config validation, as used by internal/config.Config.Validate:
//
//	type LogConfig struct {
//	    Level string `validate:"oneof=debug info warn error"`
//	}
//
//	type ServerConfig struct {
//	    Addr string `validate:"required"`
//	}
//
// # Thread Safety
//
// The singleton validator is initialized once and safe for concurrent use:
//
//	validate := validation.GetValidator()  // Thread-safe
//	err := validation.ValidateStruct(&req) // Thread-safe
//
// # Performance
//
// The validator caches struct reflection information:
//   - First validation of a struct type: ~1ms (reflection + caching)
//   - Subsequent validations: ~10us (cached)
//   - Memory: ~500 bytes per cached struct type
//
// # See Also
//
//   - internal/config: the sole caller, validating the loaded Config
//   - github.com/go-playground/validator/v10: Underlying library
package validation
