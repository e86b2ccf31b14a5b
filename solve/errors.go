package solve

import (
	"errors"
	"fmt"
)

// Kind classifies bridge failures. Every error returned from Model is an
// *Error carrying one of these kinds; solver verdicts about the model
// (infeasible, unbounded, limits) are never errors and never appear here.
type Kind int

const (
	// KindInvalidInput: the request failed the size or well-formedness
	// checks before any transformation work.
	KindInvalidInput Kind = iota + 1

	// KindIntegralityNotSupported: the request contains integer variables
	// and does not ask for the continuous relaxation.
	KindIntegralityNotSupported

	// KindMalformedModel: transcription to the internal form hit an
	// inconsistency, such as duplicate entries or non-finite coefficients.
	KindMalformedModel

	// KindSolverInvocation: the solver failed as a component; the cause is
	// wrapped.
	KindSolverInvocation

	// KindInternalInconsistency: an internal shape contract was violated.
	// This indicates a bug, not bad input.
	KindInternalInconsistency
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindIntegralityNotSupported:
		return "integrality not supported"
	case KindMalformedModel:
		return "malformed model"
	case KindSolverInvocation:
		return "solver invocation"
	case KindInternalInconsistency:
		return "internal inconsistency"
	default:
		return "unknown"
	}
}

// Error represents a bridge failure with context about which operation
// failed.
type Error struct {
	Kind Kind   // failure class
	Op   string // operation that failed (e.g., "Guard", "Convert")
	Msg  string // additional context
	Err  error  // wrapped cause, if any
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("solve: %s failed: %s: %v", e.Op, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("solve: %s failed: %s", e.Op, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("solve: %s failed: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("solve: %s failed: %s", e.Op, e.Kind)
	}
}

// Unwrap exposes the cause for errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// newError creates a bridge error with a formatted message.
func newError(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// wrapError creates a bridge error around a cause.
func wrapError(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of err when it is (or wraps) an *Error, and zero
// otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
