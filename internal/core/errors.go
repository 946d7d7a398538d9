package core

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrOwnership  = errors.New("ownership violation")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
)

// Error carries a caller-facing message for one of the sentinel kinds above.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func NotFound(kind Kind, id int64) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf("%s %d not found", kind, id)}
}

func Ownership(kind Kind, id int64) error {
	return &Error{Kind: ErrOwnership, Msg: fmt.Sprintf("%s %d does not belong to user", kind, id)}
}

func Validation(msg string) error {
	return &Error{Kind: ErrValidation, Msg: msg}
}

func Conflict(msg string) error {
	return &Error{Kind: ErrConflict, Msg: msg}
}

// IsBusiness reports whether err should be shown to the caller verbatim.
func IsBusiness(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrOwnership) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrConflict)
}
