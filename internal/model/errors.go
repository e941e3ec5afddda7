package model

import (
	"errors"
	"fmt"
)

// ValidationError is a local, pre-network failure attributable to a
// single input field. It always blocks the provider call.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func ErrValidation(field, message string) error {
	return ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}
