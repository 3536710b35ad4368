package errors

import (
	stderrors "errors"
	"fmt"
)

// FaqError is the structured error type for faqdesk.
// It provides rich context for error handling, logging, and user presentation.
type FaqError struct {
	// Code is the unique error code (e.g., "ERR_301_MODEL_UNAVAILABLE").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Storage, Model, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool
}

// Error implements the error interface.
func (e *FaqError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *FaqError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with FaqError.
func (e *FaqError) Is(target error) bool {
	if t, ok := target.(*FaqError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *FaqError) WithDetail(key, value string) *FaqError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new FaqError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *FaqError {
	return &FaqError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a FaqError from an existing error.
// The error's message becomes the FaqError message.
func Wrap(code string, err error) *FaqError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ModelUnavailable creates an embedder load/encode failure error.
// Never surfaced to the caller; the search chain recovers by falling back.
func ModelUnavailable(message string, cause error) *FaqError {
	return New(ErrCodeModelUnavailable, message, cause)
}

// StorageCorruption creates a malformed-vector error for a single entry.
// The entry is dropped from the candidate set; the read path continues.
func StorageCorruption(message string, cause error) *FaqError {
	return New(ErrCodeVectorCorrupt, message, cause)
}

// ValidationError creates a bad-input error. This is the only error class
// surfaced to search callers.
func ValidationError(code string, message string) *FaqError {
	return New(code, message, nil)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *FaqError {
	return New(ErrCodeInternal, message, cause)
}

// IsValidation reports whether err is a validation error of any code.
func IsValidation(err error) bool {
	return hasCategory(err, CategoryValidation)
}

// IsModelUnavailable reports whether err indicates the embedding model
// failed to load, encode, or respond in time.
func IsModelUnavailable(err error) bool {
	return hasCategory(err, CategoryModel)
}

// IsStorageCorruption reports whether err indicates a malformed vector blob.
func IsStorageCorruption(err error) bool {
	var fe *FaqError
	if stderrors.As(err, &fe) {
		return fe.Code == ErrCodeVectorCorrupt
	}
	return false
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var fe *FaqError
	if stderrors.As(err, &fe) {
		return fe.Retryable
	}
	return false
}

// GetCode extracts the error code from a FaqError.
// Returns empty string if not a FaqError.
func GetCode(err error) string {
	var fe *FaqError
	if stderrors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

func hasCategory(err error, cat Category) bool {
	var fe *FaqError
	if stderrors.As(err, &fe) {
		return fe.Category == cat
	}
	return false
}
