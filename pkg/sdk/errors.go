package sdk

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is.
var (
	// ErrInvalidInput corresponds to HTTP 400.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound corresponds to HTTP 404.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable covers 502 and 503: a downstream provider is down.
	ErrUnavailable = errors.New("service unavailable")
)

// APIError is a structured error response from the API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("furnish api: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// Unwrap maps status codes to sentinels so callers can branch without
// inspecting codes.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case 400:
		return ErrInvalidInput
	case 404:
		return ErrNotFound
	case 502, 503:
		return ErrUnavailable
	}
	return nil
}
