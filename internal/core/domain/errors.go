package domain

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to the request boundary.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUploadFailed = errors.New("upload failed")
)

// Primitive failures of the hasher and token service. Services translate
// them into one of the kinds above before returning.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the tagged error every core operation returns. Kind is one of the
// sentinel kinds; Message is safe to show to clients.
type Error struct {
	Kind    error
	Message string
	Fields  []FieldError
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Kind }

// NewError builds a tagged error of the given kind.
func NewError(kind error, msg string, fields ...FieldError) *Error {
	return &Error{Kind: kind, Message: msg, Fields: fields}
}

func Validation(msg string, fields ...FieldError) *Error {
	return NewError(ErrValidation, msg, fields...)
}

func Unauthorized(msg string) *Error { return NewError(ErrUnauthorized, msg) }

func Conflict(msg string) *Error { return NewError(ErrConflict, msg) }

func NotFound(msg string) *Error { return NewError(ErrNotFound, msg) }

func Forbidden(msg string) *Error { return NewError(ErrForbidden, msg) }

func UploadFailed(msg string) *Error { return NewError(ErrUploadFailed, msg) }
