package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common error conditions.
var (
	// ErrInvalidInput indicates that the input data is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProviderUnavailable indicates that a single paper source could not
	// produce a result.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrAllProvidersFailed indicates that every configured paper source failed.
	ErrAllProvidersFailed = errors.New("all providers failed")
)

// ValidationError represents a validation error for a specific field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// ProviderError describes a failed call to an external paper source.
type ProviderError struct {
	Provider   SourceType
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Provider))
	sb.WriteString(" search failed")
	if e.StatusCode != 0 {
		fmt.Fprintf(&sb, " (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

// Unwrap returns the cause and the ErrProviderUnavailable sentinel.
func (e *ProviderError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrProviderUnavailable}
	}
	return []error{e.Cause, ErrProviderUnavailable}
}

// AllProvidersFailedError collects the errors of every source attempted
// during one search.
type AllProvidersFailedError struct {
	Errors []error
}

// Error implements the error interface.
func (e *AllProvidersFailedError) Error() string {
	if len(e.Errors) == 0 {
		return "all providers failed: no sources configured"
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return "all providers failed: " + strings.Join(msgs, "; ")
}

// Unwrap returns the ErrAllProvidersFailed sentinel and every provider error.
func (e *AllProvidersFailedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Errors)+1)
	errs = append(errs, ErrAllProvidersFailed)
	return append(errs, e.Errors...)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewProviderError creates a new ProviderError.
func NewProviderError(provider SourceType, statusCode int, message string, cause error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		StatusCode: statusCode,
		Message:    message,
		Cause:      cause,
	}
}

// NewAllProvidersFailedError creates a new AllProvidersFailedError.
func NewAllProvidersFailedError(errs []error) *AllProvidersFailedError {
	return &AllProvidersFailedError{Errors: errs}
}
