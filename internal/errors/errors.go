package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrNotFound     ErrorType = "NOT_FOUND"
	ErrInvalidInput ErrorType = "INVALID_INPUT"
	ErrInternal     ErrorType = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type      ErrorType
	Message   string
	Cause     error
	Timestamp time.Time
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:      errType,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

// TypeOf returns the type of the first AppError in err's chain, or ErrInternal.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrInternal
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return TypeOf(err) == ErrNotFound
}

// IsInvalidInput checks if the error is an invalid input error
func IsInvalidInput(err error) bool {
	return TypeOf(err) == ErrInvalidInput
}

// IsValidationError is an alias for IsInvalidInput
func IsValidationError(err error) bool {
	return IsInvalidInput(err)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, err error) *AppError {
	return New(ErrNotFound, message, err)
}

// NewValidationError creates a new validation error
func NewValidationError(message string, err error) *AppError {
	return New(ErrInvalidInput, message, err)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return New(ErrInternal, message, err)
}

// NotFoundError represents a missing resource
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// NewResourceNotFoundError creates a new not found error for a specific resource
func NewResourceNotFoundError(resource, id string) *AppError {
	return NewNotFoundError(fmt.Sprintf("%s not found", resource), &NotFoundError{Resource: resource, ID: id})
}
