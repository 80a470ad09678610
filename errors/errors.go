package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Normalization error constructors ---

// UnsupportedContainer creates an AppError for an upload no decoder accepted.
func UnsupportedContainer(hint string, tried []string) *AppError {
	return &AppError{
		Code: ErrCodeUnsupportedContainer, Message: "The uploaded file does not match any supported audio container.",
		HTTPStatus: http.StatusUnsupportedMediaType, Retryable: false,
		Details: map[string]any{"declared": hint, "tried": tried},
	}
}

// EmptyOrCorrupt creates an AppError for audio that decoded to nothing.
func EmptyOrCorrupt(reason string) *AppError {
	return &AppError{
		Code: ErrCodeEmptyOrCorrupt, Message: fmt.Sprintf("The uploaded audio is empty or corrupt: %s", reason),
		HTTPStatus: http.StatusUnprocessableEntity, Retryable: false,
	}
}

// EncodingFailed creates an AppError for a failed re-encode to canonical PCM.
func EncodingFailed(reason string) *AppError {
	return &AppError{
		Code: ErrCodeEncodingFailed, Message: fmt.Sprintf("Re-encoding to canonical PCM failed: %s", reason),
		HTTPStatus: http.StatusUnprocessableEntity, Retryable: false,
	}
}

// --- Transcription error constructors ---

// Unintelligible creates an AppError for audio the backend could not transcribe confidently.
func Unintelligible(provider string) *AppError {
	return &AppError{
		Code: ErrCodeUnintelligible, Message: "The audio was processed but no confident transcript was produced.",
		HTTPStatus: http.StatusUnprocessableEntity, Retryable: false,
		Details: map[string]any{"provider": provider},
	}
}

// BackendUnavailable creates an AppError for a backend that could not be reached.
func BackendUnavailable(provider, detail string) *AppError {
	return &AppError{
		Code: ErrCodeBackendUnavailable, Message: fmt.Sprintf("The transcription backend is unavailable: %s", detail),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"provider": provider},
	}
}

// BackendUnknown creates an AppError for an unclassified backend failure.
func BackendUnknown(provider, detail string) *AppError {
	return &AppError{
		Code: ErrCodeBackendUnknown, Message: fmt.Sprintf("The transcription backend failed: %s", detail),
		HTTPStatus: http.StatusBadGateway, Retryable: false,
		Details: map[string]any{"provider": provider},
	}
}

// --- Request error constructors ---

// InvalidInput creates an AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Details: details,
	}
}

// Validation creates an AppError for failed input validation. The message
// already enumerates the failing fields.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// MissingField creates an AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"field": field},
	}
}

// NotFound creates an AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Retryable: false, Details: details,
	}
}

// Internal creates an AppError wrapping an unexpected internal failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An internal error occurred.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false,
		Cause: cause,
	}
}
