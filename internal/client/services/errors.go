package services

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")
	// ErrMFARequired means the backend accepted the credentials but wants
	// a one-time password before issuing a token.
	ErrMFARequired = errors.New("one-time password required")
	// ErrLoginRequired means registration succeeded without a session.
	ErrLoginRequired = errors.New("registration complete, please sign in")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
