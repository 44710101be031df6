package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrInvalidToken            = errors.New("invalid or expired token")
	ErrUnauthorized            = errors.New("unauthorized access")
	ErrInsufficientPermissions = errors.New("insufficient permissions")

	ErrUserNotFound = errors.New("user not found")

	ErrInvalidInput = errors.New("invalid input data")
	ErrNotFound     = errors.New("resource not found")
)

// Error codes carried by AppError. The HTTP layer maps them to status codes.
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeMissingFields = "MISSING_FIELDS"
	CodeInvalidDates  = "INVALID_DATES"
	CodeInvalidStatus = "INVALID_STATUS"
	CodeNotFound      = "NOT_FOUND"
	CodeDeviceExists  = "DEVICE_EXISTS"
	CodeScheduleOpen  = "SCHEDULE_OPEN"
)

type AppError struct {
	Code    string
	Message string
	Err     error
	Details any
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewNotFound wraps ErrNotFound so callers can match with errors.Is.
func NewNotFound(message string) *AppError {
	return NewAppError(CodeNotFound, message, ErrNotFound)
}

// NewInvalidInput wraps ErrInvalidInput so callers can match with errors.Is.
func NewInvalidInput(code, message string) *AppError {
	return NewAppError(code, message, ErrInvalidInput)
}

// IsNotFound reports whether err is (or wraps) a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput reports whether err is (or wraps) an invalid-input error.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
