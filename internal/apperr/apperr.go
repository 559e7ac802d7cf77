// Package apperr carries the error kinds shared by the schedule and exchange
// services so the HTTP layer can map them to response codes.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindValidation: missing or malformed input.
	KindValidation Kind = iota + 1
	// KindNotFound: an entity id does not resolve.
	KindNotFound
	// KindForbidden: the actor is not the entity's authorized actor.
	KindForbidden
	// KindConflict: a valid request that cannot be applied given current state.
	KindConflict
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return 0
}

func IsKind(err error, k Kind) bool { return KindOf(err) == k }
