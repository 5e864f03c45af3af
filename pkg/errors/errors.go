package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeUnauthenticated ErrorType = "unauthenticated"
	ErrorTypeTokenExpired    ErrorType = "token_expired"
	ErrorTypeTokenInvalid    ErrorType = "token_invalid"
	ErrorTypeForbidden       ErrorType = "forbidden"
	ErrorTypeNotFound        ErrorType = "not_found"
	ErrorTypeValidation      ErrorType = "validation"
	ErrorTypeConflict        ErrorType = "conflict"
	ErrorTypeInvalidState    ErrorType = "invalid_state"
	ErrorTypeRateLimited     ErrorType = "rate_limited"
	ErrorTypeInternal        ErrorType = "internal"
	ErrorTypeDatabase        ErrorType = "database"
)

// APIError represents a structured API error
type APIError struct {
	Type        ErrorType `json:"type"`
	Code        string    `json:"code"`
	Message     string    `json:"message"`
	Details     string    `json:"details,omitempty"`
	HTTPStatus  int       `json:"-"`
	InternalErr error     `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.InternalErr != nil {
		return fmt.Sprintf("%s (%s): %v", e.Message, e.Code, e.InternalErr)
	}
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Message, e.Details, e.Code)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Unwrap returns the underlying error
func (e *APIError) Unwrap() error {
	return e.InternalErr
}

// IsClientError reports whether the message is safe to show to the caller
func (e *APIError) IsClientError() bool {
	return e.HTTPStatus >= 400 && e.HTTPStatus < 500
}

// NewAPIError creates a new API error
func NewAPIError(errorType ErrorType, code, message string, httpStatus int) *APIError {
	return &APIError{
		Type:       errorType,
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// NewAPIErrorWithCause creates a new API error with an underlying cause
func NewAPIErrorWithCause(errorType ErrorType, code, message string, httpStatus int, cause error) *APIError {
	return &APIError{
		Type:        errorType,
		Code:        code,
		Message:     message,
		HTTPStatus:  httpStatus,
		InternalErr: cause,
	}
}

// Predefined error constructors

// UnauthenticatedError creates an error for missing credentials or bad login
func UnauthenticatedError(message string) *APIError {
	return NewAPIError(ErrorTypeUnauthenticated, "UNAUTHENTICATED", message, http.StatusUnauthorized)
}

// TokenExpiredError creates an error for a bearer token past its expiry
func TokenExpiredError(message string) *APIError {
	return NewAPIError(ErrorTypeTokenExpired, "TOKEN_EXPIRED", message, http.StatusUnauthorized)
}

// TokenInvalidError creates an error for a malformed, forged or orphaned token
func TokenInvalidError(message string) *APIError {
	return NewAPIError(ErrorTypeTokenInvalid, "TOKEN_INVALID", message, http.StatusUnauthorized)
}

// ForbiddenError creates a forbidden error
func ForbiddenError(message string) *APIError {
	return NewAPIError(ErrorTypeForbidden, "FORBIDDEN", message, http.StatusForbidden)
}

// NotFoundError creates a not found error
func NotFoundError(message string) *APIError {
	return NewAPIError(ErrorTypeNotFound, "RESOURCE_NOT_FOUND", message, http.StatusNotFound)
}

// ValidationError creates a validation error
func ValidationError(message string) *APIError {
	return NewAPIError(ErrorTypeValidation, "INVALID_INPUT", message, http.StatusBadRequest)
}

// ConflictError creates a conflict error
func ConflictError(message string) *APIError {
	return NewAPIError(ErrorTypeConflict, "RESOURCE_CONFLICT", message, http.StatusConflict)
}

// InvalidStateError creates an error for an operation the resource's lifecycle no longer allows
func InvalidStateError(message string) *APIError {
	return NewAPIError(ErrorTypeInvalidState, "INVALID_STATE", message, http.StatusBadRequest)
}

// RateLimitError creates a rate limit error
func RateLimitError(message string) *APIError {
	return NewAPIError(ErrorTypeRateLimited, "RATE_LIMITED", message, http.StatusTooManyRequests)
}

// InternalError creates an internal server error
func InternalError(message string) *APIError {
	return NewAPIError(ErrorTypeInternal, "INTERNAL_ERROR", message, http.StatusInternalServerError)
}

// InternalErrorWithCause creates an internal server error with cause
func InternalErrorWithCause(message string, cause error) *APIError {
	return NewAPIErrorWithCause(ErrorTypeInternal, "INTERNAL_ERROR", message, http.StatusInternalServerError, cause)
}

// DatabaseError creates a database error
func DatabaseError(operation string, cause error) *APIError {
	return NewAPIErrorWithCause(ErrorTypeDatabase, "DATABASE_ERROR",
		fmt.Sprintf("Database operation failed: %s", operation),
		http.StatusInternalServerError, cause)
}

// Error handling utilities

// IsAPIError checks if an error is or wraps an APIError
func IsAPIError(err error) bool {
	return GetAPIError(err) != nil
}

// GetAPIError extracts APIError from an error chain
func GetAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

// IsType reports whether err carries an APIError of the given type
func IsType(err error, errorType ErrorType) bool {
	apiErr := GetAPIError(err)
	return apiErr != nil && apiErr.Type == errorType
}

// Normalize converts any error into an APIError, masking unknown failures as internal
func Normalize(err error) *APIError {
	if err == nil {
		return nil
	}
	if apiErr := GetAPIError(err); apiErr != nil {
		return apiErr
	}
	return InternalErrorWithCause("Internal server error.", err)
}
