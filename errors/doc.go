// Package errors provides unified error handling for callscribe.
// It implements structured error types with machine-readable codes, HTTP
// status mapping, and retryable detection following RFC 7807.
//
// The domain taxonomy covers the two halves of the transcription pipeline:
// normalization failures (UNSUPPORTED_CONTAINER, EMPTY_OR_CORRUPT,
// ENCODING_FAILED) and backend failures (UNINTELLIGIBLE, BACKEND_UNAVAILABLE,
// UNKNOWN). Callers can always distinguish a real transcript from a failure
// programmatically; failures are never downgraded to strings.
package errors
