// Package errors provides structured error handling for faqdesk.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Storage errors (database, corrupt vectors)
//   - 3XX: Model/network errors (embedder unavailable)
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryStorage indicates database and vector persistence errors.
	CategoryStorage Category = "STORAGE"
	// CategoryModel indicates embedding model availability errors.
	CategoryModel Category = "MODEL"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Storage errors (200-299)
	ErrCodeStorageUnavailable = "ERR_201_STORAGE_UNAVAILABLE"
	ErrCodeEntryNotFound      = "ERR_202_ENTRY_NOT_FOUND"
	ErrCodeVectorCorrupt      = "ERR_203_VECTOR_CORRUPT"
	ErrCodeStorageFull        = "ERR_204_STORAGE_FULL"

	// Model errors (300-399)
	ErrCodeModelUnavailable = "ERR_301_MODEL_UNAVAILABLE"
	ErrCodeModelTimeout     = "ERR_302_MODEL_TIMEOUT"

	// Validation errors (400-499)
	ErrCodeQueryEmpty        = "ERR_401_QUERY_EMPTY"
	ErrCodeQueryTooLong      = "ERR_402_QUERY_TOO_LONG"
	ErrCodeInvalidInput      = "ERR_403_INVALID_INPUT"
	ErrCodeDimensionMismatch = "ERR_404_DIMENSION_MISMATCH"

	// Internal errors (500-599)
	ErrCodeInternal        = "ERR_501_INTERNAL"
	ErrCodeEmbeddingFailed = "ERR_502_EMBEDDING_FAILED"
	ErrCodeSearchFailed    = "ERR_503_SEARCH_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryStorage
	case '3':
		return CategoryModel
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeStorageUnavailable, ErrCodeConfigInvalid:
		return SeverityFatal
	case ErrCodeModelUnavailable, ErrCodeModelTimeout, ErrCodeVectorCorrupt, ErrCodeEmbeddingFailed:
		// Recovered internally: the search chain falls back, the backfill
		// job skips the entry, the read path drops the corrupt row.
		return SeverityWarning
	default:
		return SeverityError
	}
}

// isRetryableCode checks if an error code represents a retryable error.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeModelUnavailable, ErrCodeModelTimeout, ErrCodeEmbeddingFailed:
		return true
	default:
		return false
	}
}
