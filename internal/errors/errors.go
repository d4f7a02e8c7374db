// Package errors defines the application error taxonomy. Core operations
// return *AppError values so every adapter (CLI, HTTP) can report failures
// consistently without leaking internal details.
package errors

import (
	stderrors "errors"
	"net/http"
)

// AppError is a structured application error with a stable code, a
// user-facing message, an HTTP status and an optional cause.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface. Only the public message is
// returned; the cause stays reachable through Unwrap.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is matches any AppError carrying the same code, so wrapped copies
// compare equal to their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Wrap returns a copy of sentinel carrying internal as its cause.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage returns a copy of sentinel with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// WrapWithMessage combines WithMessage and Wrap.
func WrapWithMessage(sentinel *AppError, message string, internal error) *AppError {
	e := WithMessage(sentinel, message)
	e.Internal = internal
	return e
}

// As extracts the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Expense errors.
var (
	ErrValidation   = &AppError{Code: "VALIDATION_ERROR", Message: "Invalid expense", StatusCode: http.StatusBadRequest}
	ErrNotFound     = &AppError{Code: "EXPENSE_NOT_FOUND", Message: "Expense not found", StatusCode: http.StatusNotFound}
	ErrImportFormat = &AppError{Code: "IMPORT_FORMAT_ERROR", Message: "Import document is not a valid expense export", StatusCode: http.StatusUnprocessableEntity}
	ErrPersistence  = &AppError{Code: "PERSISTENCE_ERROR", Message: "Could not access saved expenses", StatusCode: http.StatusServiceUnavailable}
)

// General errors.
var (
	ErrInvalidInput = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrInternal     = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)
