// Package apperror defines the application's error taxonomy.
//
// Services return these typed errors; the HTTP layer translates them into
// status codes in one place (handler/response.go). That keeps the service
// layer free of HTTP knowledge while still letting handlers answer with the
// right status.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrUpstream   = errors.New("upstream error")
)

type AppError struct {
	Err     error  // sentinel identifying the category
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound covers both "the row does not exist" and "the caller is not
// allowed to see it" — the API deliberately does not distinguish the two,
// so a guessed id leaks nothing.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Upstream wraps a failure of an external dependency (the GitHub OAuth
// endpoints). The cause is kept in the chain for logging; the Message is what
// the client may see.
func Upstream(message string, cause error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrUpstream, cause),
		Message: message,
	}
}
