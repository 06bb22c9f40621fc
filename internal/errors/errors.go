package errors

import (
	"errors"
	"fmt"
)

// ScoutError is the structured error type for docscout.
// It provides context for error handling, logging, and user presentation.
type ScoutError struct {
	// Code is the unique error code (e.g., "ERR_102_WEIGHTS_INVALID").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Network, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *ScoutError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *ScoutError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with ScoutError.
func (e *ScoutError) Is(target error) bool {
	if t, ok := target.(*ScoutError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *ScoutError) WithDetail(key, value string) *ScoutError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *ScoutError) WithSuggestion(suggestion string) *ScoutError {
	e.Suggestion = suggestion
	return e
}

// New creates a new ScoutError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *ScoutError {
	return &ScoutError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a ScoutError around an existing error with a
// caller-supplied message. Returns nil for a nil error.
func Wrap(err error, code string, message string) *ScoutError {
	if err == nil {
		return nil
	}
	return New(code, message, err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string) *ScoutError {
	return New(ErrCodeConfigInvalid, message, nil)
}

// WeightsError creates an error for fusion weights not summing to 1.0.
func WeightsError(keyword, semantic float64) *ScoutError {
	return New(ErrCodeWeightsInvalid,
		fmt.Sprintf("fusion weights must sum to 1.0, got keyword=%.4f semantic=%.4f (sum=%.4f)",
			keyword, semantic, keyword+semantic), nil).
		WithSuggestion("adjust keyword_weight and semantic_weight so they sum to 1.0")
}

// CacheConfigError creates an error for invalid cache construction parameters.
func CacheConfigError(message string) *ScoutError {
	return New(ErrCodeCacheConfig, message, nil)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *ScoutError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *ScoutError {
	return New(ErrCodeInternal, message, cause)
}

// IsConfig reports whether err is a configuration error of any code.
func IsConfig(err error) bool {
	var se *ScoutError
	if errors.As(err, &se) {
		return se.Category == CategoryConfig
	}
	return false
}

// IsRetryable reports whether err may be retried.
func IsRetryable(err error) bool {
	var se *ScoutError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}
