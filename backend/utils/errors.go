package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError reports an unknown task, subtask or notification id.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// AuthError reports a missing or unusable caller identity.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// ForbiddenError reports an identified caller acting outside its scope.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

// StorageError wraps a persistence failure. Its cause is logged, never sent
// to the caller.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

func NewValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...any) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

func NewAuthError(format string, args ...any) error {
	return &AuthError{Message: fmt.Sprintf(format, args...)}
}

func NewForbiddenError(format string, args ...any) error {
	return &ForbiddenError{Message: fmt.Sprintf(format, args...)}
}

func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// GenericStorageMessage is what callers see for any StorageError.
const GenericStorageMessage = "Something went wrong, please try again later"

// StatusFor maps an error to the HTTP status and the message safe to expose.
func StatusFor(err error) (int, string) {
	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		authErr       *AuthError
		forbiddenErr  *ForbiddenError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Message
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound, notFoundErr.Message
	case errors.As(err, &authErr):
		return http.StatusUnauthorized, authErr.Message
	case errors.As(err, &forbiddenErr):
		return http.StatusForbidden, forbiddenErr.Message
	default:
		return http.StatusInternalServerError, GenericStorageMessage
	}
}
