package pipeline

import (
	"errors"

	"github.com/rotisserie/eris"
)

// ErrorKind classifies pipeline failures.
type ErrorKind string

const (
	// KindValidation marks missing or malformed caller input.
	KindValidation ErrorKind = "validation"
	// KindUpstreamUnavailable marks a failed capability call. Absorbed
	// at the sub-operation level, never surfaced past its stage.
	KindUpstreamUnavailable ErrorKind = "upstream_unavailable"
	// KindNoData marks a stage whose sources all returned nothing.
	KindNoData ErrorKind = "no_data"
	// KindAborted marks a terminal stage failure that ends the run.
	KindAborted ErrorKind = "pipeline_aborted"
)

// Error is a classified pipeline failure.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func validationError(msg string) *Error {
	return newError(KindValidation, eris.New(msg))
}

// KindOf returns the classification of err, or an empty kind for
// unclassified errors.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
