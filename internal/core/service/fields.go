package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/videotube/user-service/internal/core/domain"
)

// Length bounds of the stored profile fields, counted after normalisation.
const (
	usernameMinLen = 3
	usernameMaxLen = 20
	fullNameMinLen = 3
	fullNameMaxLen = 100
)

// lengthError reports value as invalid when its character count falls
// outside [lo, hi].
func lengthError(field, value string, lo, hi int) *domain.FieldError {
	n := utf8.RuneCountInString(value)
	if n >= lo && n <= hi {
		return nil
	}
	return &domain.FieldError{
		Field:   field,
		Message: fmt.Sprintf("%s must be between %d and %d characters", field, lo, hi),
	}
}

// checkFields collects the non-nil field errors into a validation error.
func checkFields(errs ...*domain.FieldError) error {
	var fields []domain.FieldError
	for _, fe := range errs {
		if fe != nil {
			fields = append(fields, *fe)
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return domain.Validation("invalid request", fields...)
}

func normalizeName(s string) string {
	return strings.TrimSpace(s)
}
