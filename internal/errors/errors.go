// Package errors provides a lightweight structured error type (UnifyError)
// for category-based classification across the composition engine and CLI.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a unify error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Composition errors
	CategoryResolve  ErrorCategory = "resolve"
	CategoryCompose  ErrorCategory = "compose"
	CategoryMarkup   ErrorCategory = "markup"
	CategoryHead     ErrorCategory = "head"
	CategorySecurity ErrorCategory = "security"
	CategoryMarkdown ErrorCategory = "markdown"

	// Runtime and infrastructure errors
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryCache      ErrorCategory = "cache"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops the page being composed
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded output
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// UnifyError is a structured error with category, severity, and context
type UnifyError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for UnifyError
type ContextFields map[string]any

// Error implements the error interface
func (e *UnifyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *UnifyError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *UnifyError) WithContext(key string, value any) *UnifyError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new UnifyError
func New(category ErrorCategory, severity ErrorSeverity, message string) *UnifyError {
	return &UnifyError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new UnifyError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *UnifyError {
	return &UnifyError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}
