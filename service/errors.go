package service

import "errors"

// Error kinds. Handlers map each one to a single HTTP status.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrProcessing   = errors.New("processing failed")
	ErrBusy         = errors.New("busy")
)

// Error carries a message that is safe to show to clients next to the kind
// used for status mapping and the underlying cause, if any.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}

	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}

	return []error{e.Kind}
}

func newError(kind error, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}
