package core

import (
	"errors"
	"fmt"
	"net/http"
)

// Error taxonomy. Callers match with errors.Is.
var (
	// ErrValidation is a locally detected problem; the request never reached the network.
	ErrValidation = errors.New("validation failed")
	// ErrMalformed is a 400 response: the backend rejected a field.
	ErrMalformed = errors.New("malformed input")
	// ErrConflict is a 409 response: name or identity already taken.
	ErrConflict = errors.New("conflict")
	// ErrResolution collapses 404 and 403 on workspace/page resolution.
	ErrResolution = errors.New("not found or access denied")
	// ErrSilentFailure is any other non-success outcome. It is never retried.
	ErrSilentFailure = errors.New("request failed")
	// ErrSessionTerminated is returned when the caller's own identity can not be resolved.
	ErrSessionTerminated = errors.New("session terminated")
)

// FieldError is a named, user-facing message attached to one input field.
type FieldError struct {
	Field   string
	Message string
	Kind    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error {
	return e.Kind
}

// Invalid builds a FieldError of kind ErrValidation.
func Invalid(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message, Kind: ErrValidation}
}

// StatusError describes a non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status=%d", e.Method, e.Path, e.Status)
}

// Unwrap classifies the status into the taxonomy.
func (e *StatusError) Unwrap() error {
	return Classify(e.Status)
}

// Classify maps an HTTP status to one of the three outcome classes.
// A nil result means success.
func Classify(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusBadRequest:
		return ErrMalformed
	case status == http.StatusConflict:
		return ErrConflict
	default:
		return ErrSilentFailure
	}
}

// IsClientError reports whether err is a surfaced client error (400 or 409).
func IsClientError(err error) bool {
	return errors.Is(err, ErrMalformed) || errors.Is(err, ErrConflict)
}

// StatusOf extracts the HTTP status from err, or 0 when there is none
// (network failure, validation error).
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

// IsNotFound reports whether err carries a 404 status.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}
