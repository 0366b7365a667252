// Package common defines shared constants and sentinel errors used across
// client and server layers of CareChain. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors.
	ErrorValidation         = errors.New("validation error")
	ErrorEmailAlreadyExists = errors.New("email already registered")
	ErrorInvalidCredentials = errors.New("incorrect email or password")
	ErrorWeakPassword       = errors.New("password does not meet requirements")

	// Auth errors (invalid, malformed or expired token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
