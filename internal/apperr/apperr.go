// Package apperr holds the error kinds shared by the store, the services and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("validation failed")
	ErrConflict       = errors.New("conflict")
	ErrDeliveryFailed = errors.New("delivery failed")
	ErrPersistence    = errors.New("persistence error")
)

// Error tags an underlying cause with one of the kinds above.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	default:
		return e.Kind.Error()
	}
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Msg: fmt.Sprintf(format, args...)}
}

// Delivery wraps a failed live push. Callers log it and move on.
func Delivery(topic string, err error) error {
	return &Error{Kind: ErrDeliveryFailed, Msg: "push to " + topic, Err: err}
}

// Persistence wraps a store failure. Errors that already carry a kind pass through unchanged.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsKnown(err) {
		return err
	}
	return &Error{Kind: ErrPersistence, Msg: op, Err: err}
}

// IsKnown reports whether err already carries one of the package kinds.
func IsKnown(err error) bool {
	for _, kind := range []error{ErrNotFound, ErrValidation, ErrConflict, ErrDeliveryFailed, ErrPersistence} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
