package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the two failure modes callers branch on.
var (
	// ErrSessionExpired is returned for a 401 on any call other than login.
	// The session layer clears stored credentials when it sees this.
	ErrSessionExpired = errors.New("Session expired. Please login again.")

	// ErrNetwork is returned when no response was received at all.
	ErrNetwork = errors.New("Network error - please check your connection")
)

// ErrorKind classifies an APIError for callers that need more than the message.
type ErrorKind int

const (
	KindValidation ErrorKind = iota // 4xx with a message worth showing inline
	KindAuth                        // 401 on a login attempt
	KindServer                      // 5xx
)

// APIError is a backend-reported failure with a human-readable message,
// either passed through from the backend or taken from the default table.
type APIError struct {
	Status  int
	Kind    ErrorKind
	Message string
}

func (e *APIError) Error() string { return e.Message }

// IsAuthFailure reports whether err is a rejected login attempt.
func IsAuthFailure(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindAuth
}

// IsSessionExpired reports whether err means stored credentials are stale.
func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}

// IsNetworkError reports whether no response was received.
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// defaultErrorMessage maps an HTTP status to the fallback message shown when
// the backend response carries no message of its own.
func defaultErrorMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Bad request - please check your input"
	case http.StatusForbidden:
		return "Access forbidden"
	case http.StatusNotFound:
		return "Resource not found"
	case http.StatusConflict:
		return "Conflict - resource already exists"
	case http.StatusUnprocessableEntity:
		return "Validation failed"
	case http.StatusTooManyRequests:
		return "Too many requests - please try again later"
	case http.StatusInternalServerError:
		return "Server error - please try again later"
	case http.StatusServiceUnavailable:
		return "Service unavailable - please try again later"
	default:
		return "An error occurred"
	}
}

func networkError(err error) error {
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}
