// Package validation holds the error type shared by the event normalizer
// and the booking validator.
package validation

import (
	"errors"
	"fmt"
)

// Error reports a single invalid input field. Cause is kept for logs and
// never shown to clients.
type Error struct {
	Field   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func Required(field string) *Error {
	return &Error{Field: field, Message: "is required"}
}

func Invalid(field string) *Error {
	return &Error{Field: field, Message: "is invalid"}
}

// As unwraps err into a *Error.
func As(err error) (*Error, bool) {
	var ve *Error
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
