package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Application error codes
const (
	EINVALID      = "invalid"      // Invalid input or validation failure
	EUNAUTHORIZED = "unauthorized" // Authentication required
	EFORBIDDEN    = "forbidden"    // Permission denied
	ENOTFOUND     = "not_found"    // Resource not found
	ECONFLICT     = "conflict"     // Resource conflict (e.g., duplicate)
	ERATELIMIT    = "rate_limit"   // Rate limit exceeded
	EUNAVAILABLE  = "unavailable"  // Upstream API unreachable
	EINTERNAL     = "internal"     // Internal server error
)

// Error represents an application error with structured information.
type Error struct {
	Code    string // Machine-readable error code
	Op      string // Operation that failed (e.g., "auth.login")
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf creates a new Error with the given code, operation, and formatted message.
func Errorf(code, op, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode returns the code of the root error, or EINTERNAL if none.
// APIErrors are mapped from their upstream HTTP status.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.DomainCode()
	}
	return EINTERNAL
}

// ErrorMessage returns the human-readable message of the error.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Code == EINTERNAL {
			return "An internal error occurred. Please try again later."
		}
		return e.Message
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "An internal error occurred. Please try again later."
}

// Unauthorized creates an authentication error.
func Unauthorized(op, message string) *Error {
	return &Error{Code: EUNAUTHORIZED, Op: op, Message: message}
}

// Invalid creates a validation error.
func Invalid(op, message string) *Error {
	return &Error{Code: EINVALID, Op: op, Message: message}
}

// Internal creates an internal error, wrapping the underlying error.
func Internal(err error, op, message string) *Error {
	return &Error{Code: EINTERNAL, Op: op, Message: message, Err: err}
}

// =============================================================================
// Upstream API errors
// =============================================================================

// Backend error codes carried in the "error" field of failure responses.
// The email-not-verified code is the one the UI branches on; older backend
// versions omit it, so EmailNotVerified also falls back to matching the
// message text.
const (
	CodeEmailNotVerified = "EMAIL_NOT_VERIFIED"
)

// NetworkErrorMessage is the normalized message for transport failures.
const NetworkErrorMessage = "Network error. Please check your connection."

// APIError is the normalized failure shape for every call to the Soul
// Paradise backend. StatusCode 0 means the request never produced a
// response (DNS failure, refused connection, timeout); any other value is
// the HTTP status returned by the backend, with Message taken verbatim
// from its response body.
type APIError struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
	Code       string `json:"error,omitempty"`
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("api: network error: %s", e.Message)
	}
	return fmt.Sprintf("api: %d: %s", e.StatusCode, e.Message)
}

// IsNetwork reports whether the error is a transport failure (no response
// reached the server). These are always retryable.
func (e *APIError) IsNetwork() bool {
	return e.StatusCode == 0
}

// IsUnauthorized reports whether the backend rejected the bearer token.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == 401
}

// EmailNotVerified reports whether the failure is the unverified-email
// rejection from login. Prefers the structured backend code when present;
// the substring check covers backend versions that only set the message.
func (e *APIError) EmailNotVerified() bool {
	if e.Code == CodeEmailNotVerified {
		return true
	}
	return strings.Contains(strings.ToLower(e.Message), "verify your email")
}

// DomainCode maps the upstream HTTP status onto the application error codes.
func (e *APIError) DomainCode() string {
	switch {
	case e.StatusCode == 0:
		return EUNAVAILABLE
	case e.StatusCode == 401:
		return EUNAUTHORIZED
	case e.StatusCode == 403:
		return EFORBIDDEN
	case e.StatusCode == 404:
		return ENOTFOUND
	case e.StatusCode == 409:
		return ECONFLICT
	case e.StatusCode == 429:
		return ERATELIMIT
	case e.StatusCode >= 400 && e.StatusCode < 500:
		return EINVALID
	default:
		return EINTERNAL
	}
}

// AsAPIError unwraps err to an *APIError if possible.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
