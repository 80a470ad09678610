package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Normalization errors
const (
	// ErrCodeUnsupportedContainer indicates no decoder accepted the uploaded bytes.
	ErrCodeUnsupportedContainer ErrorCode = "UNSUPPORTED_CONTAINER"
	// ErrCodeEmptyOrCorrupt indicates the upload decoded to zero-length audio.
	ErrCodeEmptyOrCorrupt ErrorCode = "EMPTY_OR_CORRUPT"
	// ErrCodeEncodingFailed indicates re-encoding to canonical PCM failed.
	ErrCodeEncodingFailed ErrorCode = "ENCODING_FAILED"
)

// Transcription errors
const (
	// ErrCodeUnintelligible indicates the backend produced no confident transcript.
	ErrCodeUnintelligible ErrorCode = "UNINTELLIGIBLE"
	// ErrCodeBackendUnavailable indicates a network or service failure reaching the backend.
	ErrCodeBackendUnavailable ErrorCode = "BACKEND_UNAVAILABLE"
	// ErrCodeBackendUnknown indicates an unclassified backend failure.
	ErrCodeBackendUnknown ErrorCode = "UNKNOWN"
)

// Request/resource errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeBackendUnavailable:   true,
	ErrCodeBackendUnknown:       false,
	ErrCodeUnintelligible:       false,
	ErrCodeUnsupportedContainer: false,
	ErrCodeEmptyOrCorrupt:       false,
	ErrCodeEncodingFailed:       false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
