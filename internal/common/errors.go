package common

import (
	"errors"
	"net/http"
)

// Domain sentinels. Services wrap these with %w; handlers translate
// them into HTTP statuses through WriteError.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// AppError carries an error code and HTTP status alongside the cause.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// WriteError renders err as the canonical error payload, mapping
// AppError and the domain sentinels to their statuses.
func WriteError(w http.ResponseWriter, err error) {
	var app *AppError
	if errors.As(err, &app) {
		JSONError(w, app.HTTPStatus, app.Code, app.Message, app.Details)
		return
	}
	switch {
	case errors.Is(err, ErrNotFound):
		JSONError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, ErrInvalidInput):
		JSONError(w, http.StatusUnprocessableEntity, "INVALID_INPUT", err.Error(), nil)
	case errors.Is(err, ErrConflict):
		JSONError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
	case errors.Is(err, ErrUnauthorized):
		JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error(), nil)
	default:
		JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
	}
}
