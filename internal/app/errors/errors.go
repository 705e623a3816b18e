package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Failure taxonomy of the ingestion and query pipeline.
// Callers match with errors.Is after any amount of wrapping.
var (
	// Extraction
	ErrDecode       = New("video could not be decoded")
	ErrFrameRead    = New("frame read failed")
	ErrWriteFailure = New("frame image write failed")

	// Storage
	ErrInsertBatch = New("insert batch failed")

	// Query
	ErrUnsupportedModality  = New("unsupported modality")
	ErrVectorizationService = New("vectorization service failed")

	// Configuration errors
	ErrMissingAPIKey = New("API key is required")
	ErrInvalidConfig = New("invalid configuration")

	// Collection lifecycle
	ErrCollectionNotFound = New("collection not found")

	// Catalog
	ErrNotFound = New("not found")
)

// Error represents a standardized error
type Error struct {
	message string
	cause   error
}

// New creates a new error
func New(message string) *Error {
	return &Error{message: message}
}

// Newf creates a new formatted error
func Newf(format string, args ...interface{}) *Error {
	return &Error{message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: message,
		cause:   err,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: fmt.Sprintf(format, args...),
		cause:   err,
	}
}

// Mark attaches a taxonomy sentinel to a concrete cause so that both
// errors.Is(err, kind) and errors.Is(err, cause) hold.
func Mark(kind *Error, cause error, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if cause == nil {
		return &Error{message: msg, cause: kind}
	}
	return &Error{message: msg, cause: &joined{kind: kind, cause: cause}}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Is checks if the error matches target
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.message == t.message
}

type joined struct {
	kind  *Error
	cause error
}

func (j *joined) Error() string {
	return fmt.Sprintf("%s: %v", j.kind.message, j.cause)
}

func (j *joined) Unwrap() []error {
	return []error{j.kind, j.cause}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// Helper functions for common patterns

// RequiredField returns an error for missing required fields
func RequiredField(field string) error {
	return Newf("%s is required", field)
}

// InvalidField returns an error for invalid field values
func InvalidField(field string, reason string) error {
	return Newf("%s is invalid: %s", field, reason)
}

// OutOfRange returns an error for values outside acceptable range
func OutOfRange(field string, min, max interface{}) error {
	return Newf("%s out of range (must be between %v and %v)", field, min, max)
}

// NotFound returns an error for items that were not found
func NotFound(itemType string, identifier string) error {
	return Wrapf(ErrNotFound, "%s %s", itemType, identifier)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "required") ||
		strings.Contains(msg, "invalid") ||
		strings.Contains(msg, "out of range")
}
