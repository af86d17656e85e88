package apierr

import (
	"errors"
	"fmt"
	"net/http"

	domainerrs "github.com/yungbote/productforge-backend/internal/pkg/errors"
)

// Error carries the HTTP status a failure should surface with.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// Validation reports a bad request. The wrapped error matches ErrInvalidArgument.
func Validation(code, format string, args ...any) *Error {
	if code == "" {
		code = "validation_failed"
	}
	return New(http.StatusBadRequest, code, fmt.Errorf("%w: "+format, append([]any{domainerrs.ErrInvalidArgument}, args...)...))
}

// NotFound reports a missing resource. The wrapped error matches ErrNotFound.
func NotFound(what string) *Error {
	return New(http.StatusNotFound, "not_found", fmt.Errorf("%s %w", what, domainerrs.ErrNotFound))
}

// IsValidation is true for any 4xx apierr or an error wrapping ErrInvalidArgument.
func IsValidation(err error) bool {
	var ae *Error
	if errors.As(err, &ae) && ae.Status >= 400 && ae.Status < 500 {
		return true
	}
	return errors.Is(err, domainerrs.ErrInvalidArgument)
}
