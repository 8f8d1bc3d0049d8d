// Package errors defines the structured error values HTTP handlers return.
// Each error carries a type that maps to an HTTP status and a metrics label,
// plus optional context fields that end up in the JSON response and the log
// line.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType categorizes an error for status mapping and metrics.
type ErrorType string

const (
	TypeValidation ErrorType = "validation" // 400
	TypeForbidden  ErrorType = "forbidden"  // 403
	TypeNotFound   ErrorType = "not_found"  // 404
	TypeConflict   ErrorType = "conflict"   // 409
	TypeInternal   ErrorType = "internal"   // 500
	TypeExternal   ErrorType = "external"   // 502
)

// Error is a typed error with optional cause and context fields.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps the error type to a response status. Unknown types are
// treated as internal.
func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeForbidden:
		return http.StatusForbidden
	case TypeNotFound:
		return http.StatusNotFound
	case TypeConflict:
		return http.StatusConflict
	case TypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func newError(errType ErrorType, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// ValidationError reports malformed or otherwise unacceptable input (400).
func ValidationError(message string) *Error {
	return newError(TypeValidation, message, nil)
}

// ForbiddenError reports a request that failed authentication, such as a
// webhook delivery with a bad signature (403).
func ForbiddenError(message string) *Error {
	return newError(TypeForbidden, message, nil)
}

// NotFoundError reports a missing resource (404).
func NotFoundError(message string) *Error {
	return newError(TypeNotFound, message, nil)
}

// ConflictError reports a state conflict (409).
func ConflictError(message string) *Error {
	return newError(TypeConflict, message, nil)
}

// InternalError reports a server-side failure (500). The cause is logged but
// never sent to the client.
func InternalError(message string, cause error) *Error {
	return newError(TypeInternal, message, cause)
}

// ExternalError reports a failed upstream dependency such as the Twitch API
// or Discord (502).
func ExternalError(message string, cause error) *Error {
	return newError(TypeExternal, message, cause)
}

// WithContext attaches a key/value pair for the response and log line.
// Chainable.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithField is an alias for WithContext.
func (e *Error) WithField(key string, value any) *Error {
	return e.WithContext(key, value)
}

// ErrorResponse is the JSON body written for a failed request.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Type    ErrorType      `json:"type"`
	Context map[string]any `json:"context,omitempty"`
}

// ToResponse builds the client-facing representation. The cause stays out of
// the response on purpose.
func (e *Error) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Type:    e.Type,
		Context: e.Context,
	}
}

// AsStructuredError returns err as an *Error, unwrapping if needed. Plain
// errors become internal errors with the original as cause.
func AsStructuredError(err error) *Error {
	if err == nil {
		return nil
	}

	var structured *Error
	if errors.As(err, &structured) {
		return structured
	}

	return InternalError("internal server error", err)
}
