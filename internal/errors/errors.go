// Package errors defines the error taxonomy flexset's packages report
// through, layered on top of github.com/pkg/errors for wrapping and
// stack-trace-capable construction.
package errors

import (
	"github.com/pkg/errors"
)

// Kind classifies a failure the way spec.md §7 describes it. The core API
// (orderedset and multimap) surfaces these as boolean returns rather than
// errors, and no package in this module returns a Kind-carrying error;
// Kind is available to code that needs to distinguish "not found" from
// "wrong type" from "fatal."
type Kind int

const (
	// KindNone is the zero value; never attached to a real error.
	KindNone Kind = iota
	// KindNotFound means a member/key/rank/id was not present.
	KindNotFound
	// KindDuplicate means an Nx/Xx precondition failed (Nx on existing,
	// Xx on missing).
	KindDuplicate
	// KindTypeMismatch means arithmetic was attempted on a non-numeric Value.
	KindTypeMismatch
	// KindOutOfBounds means a rank normalised outside the valid range.
	KindOutOfBounds
	// KindEmptyContainer means Pop/First/Last was called on an empty container.
	KindEmptyContainer
	// KindAllocationFailure means the process could not grow a buffer.
	// Per spec.md §7 this is meant to be fatal; flexset still returns an
	// error instead of calling os.Exit so callers embedding the library
	// retain control over how "fatal" is handled.
	KindAllocationFailure
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindDuplicate:
		return "duplicate"
	case KindTypeMismatch:
		return "type_mismatch"
	case KindOutOfBounds:
		return "out_of_bounds"
	case KindEmptyContainer:
		return "empty_container"
	case KindAllocationFailure:
		return "allocation_failure"
	default:
		return "none"
	}
}

// kindError attaches a Kind to a wrapped pkg/errors error so both
// errors.Is-style taxonomy checks and %+v stack traces work.
type kindError struct {
	kind Kind
	err  error
}

func (e *kindError) Error() string { return e.err.Error() }
func (e *kindError) Unwrap() error { return e.err }
func (e *kindError) Kind() Kind    { return e.kind }

// New wraps msg with kind, following the same construction shape as
// errors.New (github.com/pkg/errors) used throughout this module.
func New(kind Kind, msg string) error {
	return &kindError{kind: kind, err: errors.New(msg)}
}

// Errorf is New with fmt-style formatting, mirroring errors.Errorf.
func Errorf(kind Kind, format string, args ...interface{}) error {
	return &kindError{kind: kind, err: errors.Errorf(format, args...)}
}

// Wrap attaches kind and a message to an existing error, preserving its
// cause chain (errors.Wrap semantics).
func Wrap(err error, kind Kind, msg string) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, err: errors.Wrap(err, msg)}
}

// GetKind extracts the Kind from err, or KindNone if err does not carry one.
func GetKind(err error) Kind {
	var ke *kindError
	for err != nil {
		if k, ok := err.(*kindError); ok {
			ke = k
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if ke == nil {
		return KindNone
	}
	return ke.kind
}

// Is reports whether err carries kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}

// Plain constructs an untyped (KindNone) error via pkg/errors, for the
// rare internal assertion that isn't one of the spec.md §7 kinds.
func Plain(msg string) error {
	return errors.New(msg)
}
