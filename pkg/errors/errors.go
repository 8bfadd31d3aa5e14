// Package errors provides structured errors for mediabench provider and
// benchmark operations, with stable codes callers can branch on.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode identifies the failure class of a provider or benchmark operation.
type ErrorCode string

const (
	// Configuration errors
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"

	// Provider errors
	ErrCodeListFailed   ErrorCode = "LIST_FAILED"
	ErrCodeURLFailed    ErrorCode = "URL_FAILED"
	ErrCodeUploadFailed ErrorCode = "UPLOAD_FAILED"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodePrecondition ErrorCode = "PRECONDITION_FAILED"

	// Report errors
	ErrCodeExportFailed ErrorCode = "EXPORT_FAILED"
)

// Error is a structured mediabench error carrying the operation, the object
// path it applied to and the underlying cause.
type Error struct {
	Code ErrorCode
	Op   string
	Path string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Path != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s %s: %v", e.Code, e.Op, e.Path, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Op, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s: %s %s", e.Code, e.Op, e.Path)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Op)
	}
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.Err }

// New creates a structured error without an underlying cause.
func New(code ErrorCode, op, path string) *Error {
	return &Error{Code: code, Op: op, Path: path}
}

// Wrap attaches a code, operation and path to an underlying error.
// A nil err yields nil.
func Wrap(code ErrorCode, op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Op: op, Path: path, Err: err}
}

// CodeOf extracts the ErrorCode from err, walking the wrap chain. Errors
// outside this package report an empty code.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsNotFound reports whether err is a not-found failure.
func IsNotFound(err error) bool { return CodeOf(err) == ErrCodeNotFound }

// IsPrecondition reports whether err is an optimistic-concurrency
// precondition mismatch.
func IsPrecondition(err error) bool { return CodeOf(err) == ErrCodePrecondition }
