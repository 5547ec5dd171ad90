// Package common defines shared constants and sentinel errors used across
// the server and the CLI client. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrDuplicateUser = errors.New("user already exists")

	// Service-level errors.
	ErrorInternal         = errors.New("internal error")
	ErrorUnauthorized     = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("forbidden")

	// Validation errors. Wrapped with the offending field by the services.
	ErrValidation = errors.New("validation error")

	// Token causes. Only ever surfaced to callers wrapped in ErrorUnauthorized.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
)
