package utils

import (
	"errors"
	"fmt"
)

type AppError struct {
	Code    string
	Message string
	Details map[string]string // Per-field messages for INVALID_INPUT
	Origin  error             // Original error that caused this error, if any
}

func (appErr *AppError) Error() string {
	if appErr.Origin != nil {
		return appErr.Message + ": " + appErr.Origin.Error()
	}
	return appErr.Message
}

// Unwrap exposes the original transport or storage error.
func (appErr *AppError) Unwrap() error {
	return appErr.Origin
}

// Is matches another *AppError with the same code.
func (appErr *AppError) Is(target error) bool {
	var t *AppError
	if errors.As(target, &t) {
		return t.Code == appErr.Code
	}
	return false
}

// Standard error codes for the application
const (
	// Resource errors
	ErrNotFound     = "NOT_FOUND"
	ErrDuplicate    = "DUPLICATE"
	ErrInvalidInput = "INVALID_INPUT"

	// Authentication/Authorization errors
	ErrUnauthorized = "UNAUTHORIZED"
	ErrForbidden    = "FORBIDDEN" // Rejected by row-level policy
	ErrInvalidToken = "INVALID_TOKEN"

	// Boundary errors
	ErrTransport = "TRANSPORT" // Request never got a response
	ErrDecode    = "DECODE"    // Response did not have the declared shape

	ErrDatabase = "database_error"
)

// Error creation helper functions
func NewAppError(code string, message string, originalErr error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Origin:  originalErr,
	}
}

func NewNotFoundError(resource string, id string) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

func NewInvalidInputError(message string) *AppError {
	return &AppError{
		Code:    ErrInvalidInput,
		Message: message,
	}
}

func NewValidationError(fields map[string]string) *AppError {
	return &AppError{
		Code:    ErrInvalidInput,
		Message: "validation failed",
		Details: fields,
	}
}

func NewUnauthorizedError(reason string) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "Unauthorized: " + reason,
	}
}

// IsErrorCode reports whether err, or anything it wraps, is an AppError with code.
func IsErrorCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

func IsNotFound(err error) bool {
	return IsErrorCode(err, ErrNotFound)
}

// Helper method to check if an error is related to authentication
func IsAuthError(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == ErrUnauthorized ||
			appErr.Code == ErrForbidden ||
			appErr.Code == ErrInvalidToken
	}
	return false
}

// AppErrorToExitCode converts an AppError code to a process exit status for the cmd tools.
func AppErrorToExitCode(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return 1
	}
	switch appErr.Code {
	case ErrInvalidInput:
		return 2
	case ErrNotFound:
		return 3
	case ErrUnauthorized, ErrForbidden, ErrInvalidToken:
		return 4
	case ErrTransport:
		return 5
	default:
		return 1
	}
}
