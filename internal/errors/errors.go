// Package errors provides a lightweight structured error type (TimeclockError)
// for category-based classification and retry semantics across the attendance core.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a timeclock error for classification
type ErrorCategory string

const (
	// User-facing input and session errors
	CategoryAuth       ErrorCategory = "auth"
	CategoryPin        ErrorCategory = "pin"
	CategoryValidation ErrorCategory = "validation"

	// State machine rejections
	CategoryAlreadyCheckedIn ErrorCategory = "already_checked_in"
	CategoryNoOpenRecord     ErrorCategory = "no_open_record"

	// Persistence errors
	CategoryConnection ErrorCategory = "connection"
	CategoryNotFound   ErrorCategory = "not_found"
	CategoryConstraint ErrorCategory = "constraint"
	CategoryStorage    ErrorCategory = "storage"

	// Runtime and infrastructure errors
	CategoryConfig   ErrorCategory = "config"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops the calling operation
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Rejected call, caller can correct and retry
)

// TimeclockError is a structured error with category, retryability, and context
type TimeclockError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for TimeclockError
type ContextFields map[string]any

// Error implements the error interface
func (e *TimeclockError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *TimeclockError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *TimeclockError) WithContext(key string, value any) *TimeclockError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new TimeclockError
func New(category ErrorCategory, severity ErrorSeverity, message string) *TimeclockError {
	return &TimeclockError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Retryable: false,
	}
}

// Wrap creates a new TimeclockError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *TimeclockError {
	return &TimeclockError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if tce, ok := err.(*TimeclockError); ok {
		return tce.Category == category
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if tce, ok := err.(*TimeclockError); ok {
		return tce.Retryable
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a TimeclockError
func GetCategory(err error) ErrorCategory {
	if tce, ok := err.(*TimeclockError); ok {
		return tce.Category
	}
	return CategoryInternal
}
