// Package apperr defines the error classes shared across the pipeline.
// Handlers map each class to a distinct HTTP status.
package apperr

import (
	"errors"
	"fmt"
)

// ErrInsufficientBalance aborts a confirm before any write when the user's
// caixa cannot cover the note amount.
var ErrInsufficientBalance = errors.New("insufficient balance")

// ValidationError reports malformed input: bad content type, unparseable
// date or amount, missing URL. Never retried, never partially applied.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// NotFoundError reports a referenced user, category, sheet or stored object
// that does not exist.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// ExternalServiceError wraps an OCR or storage transport/logic failure.
// These are surfaced to the caller and never retried automatically.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func External(service string, err error) error {
	return &ExternalServiceError{Service: service, Err: err}
}
