package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

// ErrorConflict marks state conflicts that are safe to retry with corrected
// input (repaying a completed loan, duplicate cycle number, duplicate group
// membership).
var ErrorConflict = errors.New("conflict")

// ErrorForbidden marks authenticated callers acting outside their role or
// ownership.
var ErrorForbidden = errors.New("forbidden")

var ErrorUnauthorized = errors.New("unauthorized")

// ValidationError wraps malformed/out-of-range input rejections. These are
// always raised before any state is read.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ConflictError carries a conflict reason while matching ErrorConflict in
// errors.Is checks.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) Unwrap() error {
	return ErrorConflict
}

func NewConflictError(message string) error {
	return &ConflictError{Message: message}
}

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
