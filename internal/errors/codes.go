// Package errors provides structured error handling for docscout.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (file, disk, index)
//   - 3XX: Network errors (embedding backend)
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file, disk, and index I/O errors.
	CategoryIO Category = "IO"
	// CategoryNetwork indicates network-related errors.
	CategoryNetwork Category = "NETWORK"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates the operation cannot proceed.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates the operation failed but the process survives.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates a recoverable condition.
	SeverityWarning Severity = "WARNING"
)

// Error codes.
const (
	// ErrCodeConfigInvalid indicates an invalid configuration value.
	ErrCodeConfigInvalid = "ERR_101_CONFIG_INVALID"
	// ErrCodeWeightsInvalid indicates fusion weights that do not sum to 1.0.
	ErrCodeWeightsInvalid = "ERR_102_WEIGHTS_INVALID"
	// ErrCodeCacheConfig indicates an invalid cache size or TTL.
	ErrCodeCacheConfig = "ERR_103_CACHE_CONFIG"

	// ErrCodeFileNotFound indicates a missing file or directory.
	ErrCodeFileNotFound = "ERR_201_FILE_NOT_FOUND"
	// ErrCodeIndexCorrupt indicates an unreadable or corrupt index.
	ErrCodeIndexCorrupt = "ERR_202_INDEX_CORRUPT"
	// ErrCodeStoreClosed indicates an operation on a closed store.
	ErrCodeStoreClosed = "ERR_203_STORE_CLOSED"

	// ErrCodeBackendUnavailable indicates the embedding backend is down.
	ErrCodeBackendUnavailable = "ERR_301_BACKEND_UNAVAILABLE"
	// ErrCodeNetworkTimeout indicates a network request timed out.
	ErrCodeNetworkTimeout = "ERR_302_NETWORK_TIMEOUT"
	// ErrCodeEmbeddingFailed indicates the embedding backend rejected a request.
	ErrCodeEmbeddingFailed = "ERR_303_EMBEDDING_FAILED"

	// ErrCodeInvalidInput indicates invalid caller input.
	ErrCodeInvalidInput = "ERR_401_INVALID_INPUT"

	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal = "ERR_501_INTERNAL"
	// ErrCodeSearchFailed indicates a retrieval backend query failed.
	ErrCodeSearchFailed = "ERR_502_SEARCH_FAILED"
)

// categoryFromCode derives the error category from the code prefix.
func categoryFromCode(code string) Category {
	if len(code) < 5 {
		return CategoryInternal
	}
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryNetwork
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode derives the severity from the code.
// Configuration errors are fatal to the call; network errors are recoverable.
func severityFromCode(code string) Severity {
	switch categoryFromCode(code) {
	case CategoryConfig:
		return SeverityFatal
	case CategoryNetwork:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// isRetryableCode reports whether operations failing with this code may be retried.
func isRetryableCode(code string) bool {
	return categoryFromCode(code) == CategoryNetwork
}
