// Package errors provides structured error types for tikzmagic.
//
// Errors carry a machine-readable [Code] so the CLI and embedding code can
// tell a fatal staging failure from a malformed SVG without string matching:
//   - INVALID_*: input validation failures (size, library names, SVG)
//   - SCRATCH_FAILED: the per-run scratch directory could not be created
//   - TOOL_*: an external program failed or is missing
//   - FILE_NOT_FOUND: an expected artifact was not generated
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidSize, "size must be W,H: %q", s)
//	if errors.Is(err, errors.ErrCodeInvalidSize) {
//	    // Handle validation error
//	}
//
//	err := errors.Wrap(errors.ErrCodeScratch, origErr, "create %s", dir)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidSize    Code = "INVALID_SIZE"
	ErrCodeInvalidLibrary Code = "INVALID_LIBRARY"
	ErrCodeInvalidSVG     Code = "INVALID_SVG"
	ErrCodeInvalidPath    Code = "INVALID_PATH"

	// Filesystem errors
	ErrCodeScratch      Code = "SCRATCH_FAILED"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// External tool errors
	ErrCodeToolFailed   Code = "TOOL_FAILED"
	ErrCodeToolNotFound Code = "TOOL_NOT_FOUND"

	// Configuration and internal errors
	ErrCodeConfig   Code = "CONFIG"
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

// Is reports whether err has the given error code.
// The outermost *Error or *ToolError in the chain decides.
func Is(err error, code Code) bool {
	c := GetCode(err)
	return c != "" && c == code
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the chain holds neither an *Error nor a *ToolError.
func GetCode(err error) Code {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			return e.Code
		case *ToolError:
			return e.Code()
		}
		err = errors.Unwrap(err)
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
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// ToolError describes an external program that exited unsuccessfully or
// could not be started.
type ToolError struct {
	Tool     string // Program name as configured (e.g. "pdflatex")
	ExitCode int    // Exit status; -1 when the program never ran
	Err      error  // Launch or wait error from os/exec
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	if e.ExitCode < 0 {
		return fmt.Sprintf("%s execution failed: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("%s terminated with status %d", e.Tool, e.ExitCode)
}

// Unwrap returns the underlying os/exec error.
func (e *ToolError) Unwrap() error {
	return e.Err
}

// Code returns the error code for this error type.
func (e *ToolError) Code() Code {
	if e.ExitCode < 0 {
		return ErrCodeToolNotFound
	}
	return ErrCodeToolFailed
}
