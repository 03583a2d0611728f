package command

import (
	"errors"
	"fmt"
)

// ErrorCode classifies command toolkit failures for logging, metrics and
// retry decisions.
type ErrorCode string

const (
	// ErrCodeInvalidInput indicates malformed declarations or payloads.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrCodeNotFound indicates a command or parameter that is not registered.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeConflict indicates a duplicate registration.
	ErrCodeConflict ErrorCode = "CONFLICT"

	// ErrCodeConnection indicates gateway or API connectivity failures.
	ErrCodeConnection ErrorCode = "CONNECTION_ERROR"

	// ErrCodeAuthentication indicates token or permission failures.
	ErrCodeAuthentication ErrorCode = "AUTH_ERROR"

	// ErrCodeRateLimit indicates the platform throttled the operation.
	ErrCodeRateLimit ErrorCode = "RATE_LIMIT_ERROR"

	// ErrCodeUnavailable indicates a dependency is temporarily down.
	ErrCodeUnavailable ErrorCode = "SERVICE_UNAVAILABLE"

	// ErrCodeConfig indicates an invalid configuration.
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"

	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Error is the structured error used across the toolkit. It carries a code
// for classification and wraps the underlying cause.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause so errors.Is and errors.As work.
func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is transient.
func (e *Error) Retryable() bool {
	switch e.Code {
	case ErrCodeRateLimit, ErrCodeUnavailable, ErrCodeConnection:
		return true
	default:
		return false
	}
}

// NewError creates a structured error.
func NewError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// ErrInvalidInput creates an invalid input error.
func ErrInvalidInput(message string, err error) *Error {
	return NewError(ErrCodeInvalidInput, message, err)
}

// ErrNotFound creates a not found error.
func ErrNotFound(message string, err error) *Error {
	return NewError(ErrCodeNotFound, message, err)
}

// ErrConflict creates a duplicate registration error.
func ErrConflict(message string, err error) *Error {
	return NewError(ErrCodeConflict, message, err)
}

// ErrConnection creates a connectivity error.
func ErrConnection(message string, err error) *Error {
	return NewError(ErrCodeConnection, message, err)
}

// ErrAuthentication creates an authentication error.
func ErrAuthentication(message string, err error) *Error {
	return NewError(ErrCodeAuthentication, message, err)
}

// ErrRateLimit creates a rate limit error.
func ErrRateLimit(message string, err error) *Error {
	return NewError(ErrCodeRateLimit, message, err)
}

// ErrUnavailable creates a service unavailable error.
func ErrUnavailable(message string, err error) *Error {
	return NewError(ErrCodeUnavailable, message, err)
}

// ErrConfig creates a configuration error.
func ErrConfig(message string, err error) *Error {
	return NewError(ErrCodeConfig, message, err)
}

// ErrInternal creates an internal error.
func ErrInternal(message string, err error) *Error {
	return NewError(ErrCodeInternal, message, err)
}

// CodeOf extracts the ErrorCode from err, defaulting to internal.
func CodeOf(err error) ErrorCode {
	var cmdErr *Error
	if errors.As(err, &cmdErr) {
		return cmdErr.Code
	}
	return ErrCodeInternal
}
