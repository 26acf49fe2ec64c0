// Package errors defines the sentinel errors shared by the search engine and
// its service layer, plus an AppError type that carries an HTTP status code.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrInternal        = errors.New("internal error")
	ErrTimeout         = errors.New("operation timed out")
)

// AppError wraps a sentinel with a human-readable message and the HTTP status
// the service layer should answer with.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// InvalidArgumentf builds a 400 AppError around ErrInvalidArgument.
func InvalidArgumentf(format string, args ...any) *AppError {
	return Newf(ErrInvalidArgument, http.StatusBadRequest, format, args...)
}

// NotFoundf builds a 404 AppError around ErrNotFound.
func NotFoundf(format string, args ...any) *AppError {
	return Newf(ErrNotFound, http.StatusNotFound, format, args...)
}

// Wrap attaches cause beneath a sentinel so that errors.Is matches both.
func Wrap(sentinel error, statusCode int, cause error) *AppError {
	return &AppError{
		Err:        &joined{sentinel: sentinel, cause: cause},
		Message:    cause.Error(),
		StatusCode: statusCode,
	}
}

type joined struct {
	sentinel error
	cause    error
}

func (j *joined) Error() string   { return j.sentinel.Error() }
func (j *joined) Unwrap() []error { return []error{j.sentinel, j.cause} }

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
