package errors

import (
	"errors"
	"fmt"
)

// Generic error types

var (
	// ErrInvalidInput indicates invalid input parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal indicates an internal error
	ErrInternal = errors.New("internal error")

	// ErrUnavailable indicates a capability or service is unavailable
	ErrUnavailable = errors.New("service unavailable")

	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")
)

// Analytics error kinds

var (
	// ErrConfig indicates a missing or malformed dictionary document.
	// Fatal at startup, recoverable at reload (the previous snapshot stays active).
	ErrConfig = errors.New("configuration error")

	// ErrInput indicates an empty or too-short article. Recovered locally and
	// surfaced as a warning.
	ErrInput = errors.New("input error")

	// ErrInsufficientData indicates that no group reached min_news_per_driver.
	// Surfaced as a warning next to an empty driver list.
	ErrInsufficientData = errors.New("insufficient data")
)

// Error codes carried by DomainError and report warnings
const (
	CodeConfig           = "CONFIG_ERROR"
	CodeInput            = "INPUT_ERROR"
	CodeInsufficientData = "INSUFFICIENT_DATA"
)

// DomainError wraps an error with additional context
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewConfigError reports a dictionary/config problem. The result matches ErrConfig
// and, when cause is non-nil, the cause as well.
func NewConfigError(message string, cause error) *DomainError {
	return NewDomainError(CodeConfig, message, join(ErrConfig, cause))
}

// NewInputError reports an unusable article.
func NewInputError(message string) *DomainError {
	return NewDomainError(CodeInput, message, ErrInput)
}

// NewInsufficientDataError reports that no driver could be formed.
func NewInsufficientDataError(message string) *DomainError {
	return NewDomainError(CodeInsufficientData, message, ErrInsufficientData)
}

// CodeOf returns the DomainError code found in err's chain, or "" if none.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func join(kind, cause error) error {
	if cause == nil {
		return kind
	}
	return errors.Join(kind, cause)
}

// ValidationError represents a validation error with field-specific details
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// MultiError wraps multiple errors
type MultiError struct {
	Errors []error
}

// Error implements the error interface
func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}
	return fmt.Sprintf("multiple errors (%d): %v", len(m.Errors), m.Errors[0])
}

// Unwrap exposes the collected errors to errors.Is / errors.As
func (m *MultiError) Unwrap() []error {
	return m.Errors
}

// Add adds an error to the list
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// HasErrors returns true if there are any errors
func (m *MultiError) HasErrors() bool {
	return len(m.Errors) > 0
}

// ToError returns the MultiError as an error, or nil if no errors
func (m *MultiError) ToError() error {
	if !m.HasErrors() {
		return nil
	}
	return m
}

// Helper functions

// Is checks if err is or wraps target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func New(message string) error {
	return errors.New(message)
}

func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
