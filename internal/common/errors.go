// Package common defines shared constants and sentinel errors used across
// client layers of bankfront. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Session-level errors.
	ErrNoSession      = errors.New("no session")
	ErrCorruptSession = errors.New("corrupt session data")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
