package core

import "errors"

var (
	ErrNotFound = errors.New("print job not found")
	ErrStorage  = errors.New("storage failure")
)

// ValidationError reports a malformed job submission. It is always caused by
// the caller and never changes state.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid print job: " + e.Reason
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
