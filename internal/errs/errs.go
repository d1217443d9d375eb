// Package errs defines the error taxonomy of spec §7: a closed set of
// error kinds, each carrying a propagation policy (targeted per-
// satellite deletion, epoch-level skip, or station-level abort). An
// *Error carries its Kind and wraps an error built with
// github.com/pkg/errors, so a caller can both test the kind with this
// package's Is and log a stack trace at the point the error crossed a
// station boundary.
package errs

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

// Kind is one of the error kinds of spec §7.
type Kind int

const (
	_ Kind = iota
	ConfigErr
	FileMissingErr
	ParseErr
	EpochDecimatedErr
	InsufficientObservationsErr
	TypeMissingErr
	NumericalFailureErr
	SatIDNotFoundErr
	SourceIDNotFoundErr
	BiasNotFoundErr
)

func (k Kind) String() string {
	switch k {
	case ConfigErr:
		return "ConfigError"
	case FileMissingErr:
		return "FileMissing"
	case ParseErr:
		return "ParseError"
	case EpochDecimatedErr:
		return "EpochDecimated"
	case InsufficientObservationsErr:
		return "InsufficientObservations"
	case TypeMissingErr:
		return "TypeMissingInMap"
	case NumericalFailureErr:
		return "NumericalFailure"
	case SatIDNotFoundErr:
		return "SatIDNotFound"
	case SourceIDNotFoundErr:
		return "SourceIDNotFound"
	case BiasNotFoundErr:
		return "BiasNotFound"
	default:
		return "UnknownError"
	}
}

// Severity describes how the error must be propagated.
type Severity int

const (
	// PerSatellite: caught within a pipeline stage, causes targeted
	// deletion of one satellite from the current epoch's data.
	PerSatellite Severity = iota
	// PerEpoch: propagates to the epoch loop, which emits a no-fix
	// line and continues to the next epoch.
	PerEpoch
	// PerStation: terminates processing for this station only.
	PerStation
)

func (k Kind) Severity() Severity {
	switch k {
	case ConfigErr, FileMissingErr, ParseErr:
		return PerStation
	case EpochDecimatedErr, InsufficientObservationsErr:
		return PerEpoch
	default:
		return PerSatellite
	}
}

// Error is a taxonomy-tagged error.
type Error struct {
	Kind Kind
	err  error
}

func (e *Error) Error() string { return e.Kind.String() + ": " + e.err.Error() }
func (e *Error) Unwrap() error { return e.err }
func (e *Error) Cause() error  { return e.err }

// New constructs a taxonomy error with a stack trace captured at the
// call site (github.com/pkg/errors.New attaches one).
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, err: errors.New(msg)}
}

// Wrap tags an existing error with a kind, preserving its stack if it
// already has one (github.com/pkg/errors.Wrap only adds a new stack
// frame, it doesn't discard the original cause).
func Wrap(kind Kind, err error, msg string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, err: errors.Wrap(err, msg)}
}

// Is reports whether err (or any error it wraps) carries kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
