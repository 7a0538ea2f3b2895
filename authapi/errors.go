package authapi

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// StatusError is a non-2xx response from the API, carrying the server-provided
// message when one was present.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("schoolmed api: status %d", e.Code)
	}
	return fmt.Sprintf("schoolmed api: status %d: %s", e.Code, e.Message)
}

// IsUnauthorized reports whether err represents an HTTP 401 from the API.
// Transient and network failures are not unauthorized.
func IsUnauthorized(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusUnauthorized
	}
	return false
}

// ServerMessage extracts the server-provided message from err, falling back
// to the given default. Network failures carry no server message.
func ServerMessage(err error, fallback string) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Message != "" {
		return statusErr.Message
	}
	return fallback
}
