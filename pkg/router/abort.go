package router

import (
	"errors"
	"fmt"
)

// AbortError short-circuits a handler with a user-facing message. The
// router replies with the message (ephemeral) and records the dispatch as
// aborted, not failed. It is control flow, not an error condition.
type AbortError struct {
	Message string
}

func (e *AbortError) Error() string {
	return "aborted: " + e.Message
}

// Abort returns an AbortError carrying a user-facing message.
func Abort(message string) error {
	return &AbortError{Message: message}
}

// Abortf is Abort with formatting.
func Abortf(format string, args ...any) error {
	return &AbortError{Message: fmt.Sprintf(format, args...)}
}

// IsAbort extracts an AbortError from err.
func IsAbort(err error) (*AbortError, bool) {
	var abort *AbortError
	if errors.As(err, &abort) {
		return abort, true
	}
	return nil, false
}
