package core

import "github.com/pkg/errors"

// FieldError pins an error to one named field. Row errors in processed
// batches and 400 responses both carry these.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is a rejected input, optionally broken down per field.
// The API error handler renders it as a 400 with the field map.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdown marks an error the server cannot recover from; the API error
// handler turns it into a graceful stop.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
