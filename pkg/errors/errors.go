package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents an error code
type ErrorCode string

const (
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeDuplicateKey       ErrorCode = "DUPLICATE_KEY"
	ErrCodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden          ErrorCode = "FORBIDDEN"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeBadRequest         ErrorCode = "BAD_REQUEST"
	ErrCodeValidation         ErrorCode = "VALIDATION_ERROR"
	ErrCodeStorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE"
	ErrCodeUploadRejected     ErrorCode = "UPLOAD_REJECTED"
	ErrCodeInternalError      ErrorCode = "INTERNAL_ERROR"
)

// AppError represents an application error
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with an AppError
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, resource+" not found")
}

func Validation(message string) *AppError {
	return New(ErrCodeValidation, message)
}

func BadRequest(message string) *AppError {
	return New(ErrCodeBadRequest, message)
}

func Unavailable(message string, err error) *AppError {
	return Wrap(ErrCodeStorageUnavailable, message, err)
}

func Unauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return New(ErrCodeForbidden, message)
}

func InvalidCredentials(message string) *AppError {
	return New(ErrCodeInvalidCredentials, message)
}

func UploadRejected(message string) *AppError {
	return New(ErrCodeUploadRejected, message)
}

// Internal wraps an unexpected failure; its message is never shown to clients
func Internal(message string, err error) *AppError {
	return Wrap(ErrCodeInternalError, message, err)
}

// CodeOf returns the code of the first AppError in err's chain, or ErrCodeInternalError.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternalError
}

// HasCode reports whether err carries an AppError with the given code
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsNotFound checks if error is NotFound
func IsNotFound(err error) bool {
	return HasCode(err, ErrCodeNotFound)
}

// IsDuplicateKey checks if error is DuplicateKey
func IsDuplicateKey(err error) bool {
	return HasCode(err, ErrCodeDuplicateKey)
}

// IsUnauthorized checks if error is Unauthorized
func IsUnauthorized(err error) bool {
	return HasCode(err, ErrCodeUnauthorized)
}

// IsForbidden checks if error is Forbidden
func IsForbidden(err error) bool {
	return HasCode(err, ErrCodeForbidden)
}

// IsUnavailable checks if error is StorageUnavailable
func IsUnavailable(err error) bool {
	return HasCode(err, ErrCodeStorageUnavailable)
}

// HTTPStatus maps an error to the status code returned to clients
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeDuplicateKey:
		return http.StatusConflict
	case ErrCodeUnauthorized, ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeUploadRejected:
		return http.StatusBadRequest
	case ErrCodeStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
