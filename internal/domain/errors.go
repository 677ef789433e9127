package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by GatewayError for 404 responses.
var ErrNotFound = errors.New("not found")

// ValidationError is raised locally, before any network call, when required
// input is missing or not numeric.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// AuthError is a non-OK answer from the login endpoint. Message is the
// server-supplied text and may be empty.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("authentication failed (status %d)", e.Status)
	}
	return fmt.Sprintf("authentication failed (status %d): %s", e.Status, e.Message)
}

// GatewayError is a non-OK answer from a product endpoint.
type GatewayError struct {
	Op      string
	Status  int
	Message string
}

func (e *GatewayError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
}

// Is lets callers match errors.Is(err, ErrNotFound).
func (e *GatewayError) Is(target error) bool {
	return target == ErrNotFound && e.Status == 404
}

// TransportError wraps network and decoding failures.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
