// Ensemble - Typed Service Supervision Runtime
// Copyright 2026 Coriolis Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coriolis-labs/ensemble

package httpapi

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Claims identifies the bearer of a control-API token. There is no
// role/permission model here — spec.md's control surface is a single
// operator-level handle, not a multi-tenant one — so Claims only carries
// what's needed to tell a legitimate token from a forged or expired one.
type Claims struct {
	Subject string `json:"sub"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates HS256 JWTs for the control API, and
// verifies the single bcrypt-hashed bearer credential used to obtain one.
type TokenManager struct {
	secret       []byte
	issuer        string
	timeout       time.Duration
	bearerHash    []byte
	bearerIsUnset bool
}

// NewTokenManager builds a manager from the control API's configured
// bearer token (hashed once here with bcrypt, never stored or logged in
// plaintext) and signing secret.
func NewTokenManager(issuer, signingSecret, bearerToken string, timeout time.Duration) (*TokenManager, error) {
	if len(signingSecret) < 32 {
		return nil, fmt.Errorf("httpapi: signing secret must be at least 32 bytes")
	}
	tm := &TokenManager{secret: []byte(signingSecret), issuer: issuer, timeout: timeout}
	if bearerToken == "" {
		tm.bearerIsUnset = true
		return tm, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(bearerToken), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("httpapi: hash bearer token: %w", err)
	}
	tm.bearerHash = hash
	return tm, nil
}

// VerifyBearer reports whether candidate matches the configured bearer
// token. If no bearer token was configured, every candidate is rejected —
// there is no "auth disabled" mode for the control surface.
func (tm *TokenManager) VerifyBearer(candidate string) bool {
	if tm.bearerIsUnset {
		return false
	}
	return bcrypt.CompareHashAndPassword(tm.bearerHash, []byte(candidate)) == nil
}

// Issue mints a signed JWT for subject, valid for the configured timeout.
func (tm *TokenManager) Issue(subject string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Subject: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tm.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.timeout)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("httpapi: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates tokenString, rejecting anything not signed
// with HS256 (preventing an algorithm-confusion downgrade) or expired.
func (tm *TokenManager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("httpapi: unexpected signing method %v", t.Header["alg"])
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("httpapi: invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("httpapi: token rejected")
	}
	return claims, nil
}
