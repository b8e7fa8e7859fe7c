// Package errors provides structured error types for the rulebook renderer.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the preview server and the library
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Render failures are fatal for the render pass that raised them:
//   - DUPLICATE_IDENTIFIER: a node identifier occurs twice in one document
//   - UNRESOLVED_REFERENCE: formatted text points at an identifier with no reference
//   - TEMPLATE_LOAD: the LaTeX template could not be obtained
//   - TOO_MANY_SUBRULES: a rule has more sub-rules than there are suffix letters
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnresolvedReference, "no reference for %q", id)
//	if errors.Is(err, errors.ErrCodeUnresolvedReference) {
//	    // Handle missing target
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeTemplateLoad, origErr, "read %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Render errors
	ErrCodeDuplicateIdentifier Code = "DUPLICATE_IDENTIFIER"
	ErrCodeUnresolvedReference Code = "UNRESOLVED_REFERENCE"
	ErrCodeTemplateLoad        Code = "TEMPLATE_LOAD"
	ErrCodeTooManySubRules     Code = "TOO_MANY_SUBRULES"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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

// coder is implemented by typed errors that carry their own code.
type coder interface {
	Code() Code
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error or a typed error with a matching code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if no error in the chain carries a code.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s", e.Message, UserMessage(e.Cause))
		}
		return e.Message
	}
	return err.Error()
}

// DuplicateIDError reports a node identifier that occurs more than once in
// a document. Text is set when the second occurrence is a header.
type DuplicateIDError struct {
	ID   string
	Text string
}

// Error implements the error interface.
func (e *DuplicateIDError) Error() string {
	if e.Text != "" {
		return fmt.Sprintf("id defined twice: %s (%s)", e.ID, e.Text)
	}
	return fmt.Sprintf("id defined twice: %s", e.ID)
}

// Code returns the error code for this error type.
func (e *DuplicateIDError) Code() Code {
	return ErrCodeDuplicateIdentifier
}
