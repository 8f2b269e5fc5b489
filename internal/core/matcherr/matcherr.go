// Package matcherr defines the closed set of engine-level error kinds the
// core surfaces to callers: instrument mismatches, unknown instruments or
// orders, structurally invalid orders, and the two instrument-registry
// errors. The matcher itself is infallible (anything it would otherwise
// reject becomes a Rejected/Canceled ExecutionReport); this taxonomy exists
// only at the Engine/MultiEngine boundary.
package matcherr

import "fmt"

// Kind is one of the six error kinds the core ever returns.
type Kind string

const (
	InstrumentMismatch  Kind = "INSTRUMENT_MISMATCH"
	UnknownInstrument   Kind = "UNKNOWN_INSTRUMENT"
	UnknownOrder        Kind = "UNKNOWN_ORDER"
	InvalidOrder        Kind = "INVALID_ORDER"
	InstrumentInUse     Kind = "INSTRUMENT_IN_USE"
	DuplicateInstrument Kind = "DUPLICATE_INSTRUMENT"
)

// Error is a structured error carrying one of the closed Kinds.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error of the given Kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an Error of the given Kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap attaches a cause to a new Error of the given Kind.
func Wrap(cause error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Is reports whether err is a *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if ok := asError(err, &e); ok {
		return e.Kind == kind
	}
	return false
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}
