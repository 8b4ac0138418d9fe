// Package domainerrors provides coded errors shared by all trustplane
// services. Codes classify failures for transport mapping; messages stay
// human-readable so handlers can surface them directly.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for callers that need to branch on failure kind.
type Code string

const (
	// CodeInvalidInput marks malformed or missing caller input.
	CodeInvalidInput Code = "invalid_input"
	// CodeBadRequest marks requests that are well-formed but unprocessable.
	CodeBadRequest Code = "bad_request"
	// CodeNotFound marks lookups for records that do not exist.
	CodeNotFound Code = "not_found"
	// CodeConflict marks operations that contradict current state.
	CodeConflict Code = "conflict"
	// CodeUnavailable marks downstream dependency failures.
	CodeUnavailable Code = "unavailable"
	// CodeInternal marks unexpected internal failures.
	CodeInternal Code = "internal"
)

// Error is a coded domain error. It wraps an optional cause so errors.Is and
// errors.As keep working through service layers.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New creates a coded error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. A nil err returns
// nil so call sites can wrap unconditionally.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is a readable alias for HasCode at call sites that branch on codes.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the outermost code in the chain, or CodeInternal when the
// error is uncoded.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the outermost message, falling back to the raw error text
// for uncoded errors.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
