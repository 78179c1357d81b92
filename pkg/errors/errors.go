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

// Error codes, grouped by the failure taxonomy: storage, network,
// data integrity, validation.
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrInternal
	ErrStorage
	ErrNetwork
	ErrIntegrity
	ErrValidation
)

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// Storage marks a durable-store failure. Callers are expected to log it
// and keep the prior persisted state.
func Storage(message string, err error) *AppError {
	return &AppError{
		Code:    ErrStorage,
		Message: message,
		Err:     err,
	}
}

// Network marks a backend/transport failure. Pending records stay
// pending and are retried on the next sync trigger.
func Network(message string, err error) *AppError {
	return &AppError{
		Code:    ErrNetwork,
		Message: message,
		Err:     err,
	}
}

// Integrity marks malformed persisted state that was coerced to a safe
// default rather than propagated.
func Integrity(message string, err error) *AppError {
	return &AppError{
		Code:    ErrIntegrity,
		Message: message,
		Err:     err,
	}
}

// Validation marks a non-retryable client error, e.g. syncing with an
// incomplete patient profile.
func Validation(message string, err error) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: message,
		Err:     err,
	}
}

// IsRetryable reports whether the failure class is worth retrying on a
// later trigger. Validation failures are not: the profile has to be
// completed first.
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code != ErrValidation && appErr.Code != ErrBadRequest
	}
	return true
}
