package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Transport/availability errors (retryable)
const (
	// ErrCodeConnectionFailed indicates a failed connection to a remote service.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeTimeout indicates an operation ran out of time or poll attempts.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeUploadFailed indicates a media upload did not complete.
	ErrCodeUploadFailed ErrorCode = "UPLOAD_FAILED"
)

// Provider errors
const (
	// ErrCodeProviderRejected indicates the provider refused to create or
	// finish a transcription job.
	ErrCodeProviderRejected ErrorCode = "PROVIDER_REJECTED"
	// ErrCodeParse indicates a malformed or unexpected provider response body.
	ErrCodeParse ErrorCode = "PARSE_ERROR"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Authentication errors
const (
	// ErrCodeUnauthorized indicates the request is unauthorized.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeTokenExpired indicates the session token has expired.
	ErrCodeTokenExpired ErrorCode = "TOKEN_EXPIRED"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeConnectionFailed: true,
	ErrCodeTimeout:          true,
	ErrCodeUploadFailed:     true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
