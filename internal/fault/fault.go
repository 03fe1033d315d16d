// Package fault defines the error taxonomy shared by all workflow packages.
// Callers match on Kind to pick an HTTP status or a per-item bulk result.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a workflow error.
type Kind int

const (
	// KindUnknown marks errors outside the taxonomy (store failures etc.).
	KindUnknown Kind = iota
	// KindNotFound: a template, item, assignment, or progress item id does not resolve.
	KindNotFound
	// KindConflict: duplicate active assignment, or a transition the current
	// state does not permit.
	KindConflict
	// KindForbidden: the actor lacks the role or relationship for the transition.
	KindForbidden
	// KindInvalid: malformed input.
	KindInvalid
)

// Error carries a kind plus a caller-renderable message.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// NotFound returns a KindNotFound error.
func NotFound(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Conflict returns a KindConflict error.
func Conflict(format string, args ...interface{}) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// Forbidden returns a KindForbidden error.
func Forbidden(format string, args ...interface{}) error {
	return &Error{Kind: KindForbidden, Msg: fmt.Sprintf(format, args...)}
}

// Invalid returns a KindInvalid error.
func Invalid(format string, args ...interface{}) error {
	return &Error{Kind: KindInvalid, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, unwrapping as needed. Errors outside the
// taxonomy report KindUnknown.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// IsKind reports whether err is (or wraps) a fault of the given kind.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}
