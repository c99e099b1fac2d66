package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
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

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal
)

// Optimizer error codes. These classify why a plan run rejected its input or
// produced no schedule; the optimizer never retries on its own, callers are
// expected to change the input first.
const (
	ErrInvalidParameter ErrorCode = iota + 2000
	ErrMissingScheme
	ErrInvalidWeight
	ErrInfeasible
	ErrInsufficientInventory
)

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// Common errors
func NotFound(resource string, err error) *AppError {
	return NewNotFound(resource, err)
}

func BadRequest(message string, err error) *AppError {
	return NewBadRequest(message, err)
}

func Internal(err error) *AppError {
	return NewInternal(err)
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

func InvalidParameter(message string) *AppError {
	return &AppError{
		Code:    ErrInvalidParameter,
		Message: message,
	}
}

func MissingScheme(patient string) *AppError {
	return &AppError{
		Code:    ErrMissingScheme,
		Message: fmt.Sprintf("patient %s has no resolvable dosing scheme", patient),
	}
}

func InvalidWeight(patient string, weight float64) *AppError {
	return &AppError{
		Code:    ErrInvalidWeight,
		Message: fmt.Sprintf("patient %s has non-positive weight %.2f for a per-mass scheme", patient, weight),
	}
}

func Infeasible(message string) *AppError {
	return &AppError{
		Code:    ErrInfeasible,
		Message: message,
	}
}

func InsufficientInventory(message string) *AppError {
	return &AppError{
		Code:    ErrInsufficientInventory,
		Message: message,
	}
}

// CodeOf extracts the application error code, or ErrInternal for plain errors.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}
