package service

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAuth means the provider rejected the API key.
	ErrAuth = errors.New("provider authentication failed")
	// ErrNetwork means the provider could not be reached or did not answer in time.
	ErrNetwork = errors.New("provider unreachable")
	// ErrEmptyResponse means the provider answered without any choice.
	ErrEmptyResponse = errors.New("provider returned no choices")
	// ErrProvider covers every other provider failure (bad status, malformed body).
	ErrProvider = errors.New("provider error")
)

// ValidationError represents a validation error with a field name.
// It matches ErrInvalidInput with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// RequestError is returned when an answer could not be obtained from the provider.
// Cause is one of ErrAuth, ErrNetwork, ErrEmptyResponse or ErrProvider.
type RequestError struct {
	Cause error
	Err   error
}

func (e *RequestError) Error() string {
	if e.Err == nil {
		return e.Cause.Error()
	}
	return fmt.Sprintf("%v: %v", e.Cause, e.Err)
}

func (e *RequestError) Unwrap() []error {
	return []error{e.Cause, e.Err}
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// IsTimeout reports whether err stems from a deadline rather than a refused
// or broken connection.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var timeoutErr interface{ Timeout() bool }
	return errors.As(err, &timeoutErr) && timeoutErr.Timeout()
}
