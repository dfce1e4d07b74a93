package errors

import (
	"errors"
	"fmt"
)

// BibleError is the structured error type for pocketbible.
// It provides rich context for error handling, logging, and user presentation.
type BibleError struct {
	// Code is the unique error code (e.g., "ERR_202_FORMAT_INVALID").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Asset, Validation, Internal).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Kind places the error in the asset failure taxonomy.
	Kind Kind

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *BibleError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *BibleError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with BibleError.
func (e *BibleError) Is(target error) bool {
	if t, ok := target.(*BibleError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *BibleError) WithDetail(key, value string) *BibleError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *BibleError) WithSuggestion(suggestion string) *BibleError {
	e.Suggestion = suggestion
	return e
}

// New creates a new BibleError with the given code and message.
// Category, severity, and kind are derived from the code.
func New(code string, message string, cause error) *BibleError {
	return &BibleError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Kind:     kindFromCode(code),
		Cause:    cause,
	}
}

// Newf creates a new BibleError with a formatted message and no cause.
func Newf(code string, format string, args ...any) *BibleError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Wrap creates a BibleError from an existing error.
// The error's message becomes the BibleError message.
func Wrap(code string, err error) *BibleError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// NotFound creates an asset-not-found error for the named asset.
func NotFound(asset string, cause error) *BibleError {
	return New(ErrCodeAssetNotFound, "asset not found: "+asset, cause).WithDetail("asset", asset)
}

// FormatInvalid creates a format error for the named asset.
func FormatInvalid(asset, reason string) *BibleError {
	return New(ErrCodeFormatInvalid, asset+": "+reason, nil).WithDetail("asset", asset)
}

// BoundsViolation creates an error for a length field that overruns its blob.
func BoundsViolation(asset, reason string) *BibleError {
	return New(ErrCodeBoundsViolation, asset+": "+reason, nil).WithDetail("asset", asset)
}

// AllocationFailure creates an error for a buffer that exceeds the budget.
func AllocationFailure(asset string, size, limit int64) *BibleError {
	return Newf(ErrCodeAllocationFailed, "%s: %d bytes exceeds limit of %d", asset, size, limit).
		WithDetail("asset", asset)
}

// IOFailure creates an error for a failed open/seek/read.
func IOFailure(op, asset string, cause error) *BibleError {
	return New(ErrCodeIOFailure, fmt.Sprintf("failed to %s %s", op, asset), cause).
		WithDetail("asset", asset).
		WithDetail("op", op)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *BibleError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *BibleError {
	return New(ErrCodeInvalidReference, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *BibleError {
	return New(ErrCodeInternal, message, cause)
}

// KindOf maps any error onto the asset failure taxonomy.
// Errors that are not BibleErrors are treated as I/O failures.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var be *BibleError
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindIOFailure
}

// IsNotFound reports whether err is an expected asset absence.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// GetCode extracts the error code from a BibleError.
// Returns empty string if not a BibleError.
func GetCode(err error) string {
	var be *BibleError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// GetCategory extracts the category from a BibleError.
// Returns empty string if not a BibleError.
func GetCategory(err error) Category {
	var be *BibleError
	if errors.As(err, &be) {
		return be.Category
	}
	return ""
}
