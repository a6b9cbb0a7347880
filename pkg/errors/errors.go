package errors

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
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

// Error codes, grouped by stage of the booking pipeline.
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrValidation
	ErrAvailability
	ErrPermission
	ErrConflict
	ErrPersistence
	ErrUnauthorized
	ErrInternal
)

func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

// NewValidation reports a malformed or incomplete request.
func NewValidation(message string) *AppError {
	return &AppError{Code: ErrValidation, Message: message}
}

// NewAvailability reports a candidate interval outside the professional's
// configured working windows.
func NewAvailability(message string) *AppError {
	return &AppError{Code: ErrAvailability, Message: message}
}

// NewPermission reports a slot blocked by another professional's block.
func NewPermission(message string) *AppError {
	return &AppError{Code: ErrPermission, Message: message}
}

// NewConflict reports a double-booking or an exhausted location capacity.
func NewConflict(message string) *AppError {
	return &AppError{Code: ErrConflict, Message: message}
}

func NewPersistence(message string, err error) *AppError {
	return &AppError{Code: ErrPersistence, Message: message, Err: err}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

// Code returns the AppError code, or ErrInternal for foreign errors.
func Code(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// Postgres error classes we translate to friendly messages.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// FromStore maps store-level failures to the persistence taxonomy. Known
// constraint violations get a friendly message; anything else is wrapped
// generically so the cause still unwraps.
func FromStore(err error) *AppError {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pgUniqueViolation:
			return NewPersistence("a record already exists for this slot", err)
		case pgForeignKeyViolation:
			return NewPersistence("referenced record does not exist", err)
		}
	}

	return NewPersistence("storage operation failed", err)
}
