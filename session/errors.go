package session

import "errors"

var (
	ErrStoreRequired   = errors.New("credential store is required")
	ErrAuthAPIRequired = errors.New("auth API client is required")
)

// Fallback messages surfaced when the server response carries no message of
// its own.
const (
	loginFallbackMessage    = "Login failed. Please check your credentials."
	registerFallbackMessage = "Registration failed. Please try again."
)
