package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// NetworkErrorMessage is shown when no response was received.
const NetworkErrorMessage = "Network error. Please check your connection and try again."

// APIError describes a failed backend call. Status is 0 when the request
// never got a response.
type APIError struct {
	Status   int
	Message  string
	Endpoint string
	Err      error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Endpoint, e.Message)
	}
	return fmt.Sprintf("%s: %d: %s", e.Endpoint, e.Status, e.Message)
}

func (e *APIError) Unwrap() []error {
	var errs []error
	switch {
	case e.Status == 0:
		errs = append(errs, ErrUnavailable)
	case e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden:
		errs = append(errs, ErrUnauthorized)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// FallbackMessage is the user-facing text for a status when the backend did
// not send its own message.
func FallbackMessage(status int) string {
	switch status {
	case 0:
		return NetworkErrorMessage
	case http.StatusBadRequest:
		return "Bad request. Please check your input data."
	case http.StatusUnauthorized:
		return "Authentication failed. Please login again."
	case http.StatusForbidden:
		return "You do not have permission to access this resource."
	case http.StatusNotFound:
		return "Resource not found."
	case http.StatusInternalServerError:
		return "Server error. Please try again later."
	default:
		return fmt.Sprintf("Error: %d - %s", status, http.StatusText(status))
	}
}
