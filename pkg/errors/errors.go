// Package errors provides structured error types for photonlayout.
//
// Every failure raised by the core (hierarchy model, geometry kernel, router,
// flattener) carries a machine-readable [Code] so callers can tell recoverable
// conditions apart without matching on message text:
//
//   - DUPLICATE_NAME: a cell or port name is already taken
//   - CYCLIC_REFERENCE: an instance would make a cell (transitively) contain itself
//   - INCOMPATIBLE_PORTS: a route request joins ports of different width or layer
//   - ROUTE_NOT_FOUND: the router exhausted its frontier or node budget
//   - GEOMETRY: a path cannot be turned into a valid polygon
//   - RECURSION_LIMIT: flattening exceeded the depth bound
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDuplicateName, "cell %q already exists", name)
//	if errors.Is(err, errors.ErrCodeDuplicateName) {
//	    // pick another name
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidConfig, origErr, "load %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes raised by the core.
const (
	ErrCodeDuplicateName     Code = "DUPLICATE_NAME"
	ErrCodeCyclicReference   Code = "CYCLIC_REFERENCE"
	ErrCodeIncompatiblePorts Code = "INCOMPATIBLE_PORTS"
	ErrCodeRouteNotFound     Code = "ROUTE_NOT_FOUND"
	ErrCodeGeometry          Code = "GEOMETRY"
	ErrCodeRecursionLimit    Code = "RECURSION_LIMIT"
)

// Error codes for input and infrastructure failures.
const (
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeInternal      Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Recoverable reports whether the caller can reasonably retry or adjust
// its request after err. Recursion-limit and internal failures indicate a
// broken invariant and are not recoverable.
func Recoverable(err error) bool {
	switch GetCode(err) {
	case ErrCodeRecursionLimit, ErrCodeInternal, "":
		return false
	default:
		return true
	}
}
