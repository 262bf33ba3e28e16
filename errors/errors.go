// Package errors provides error handling for topicdb.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints and details for callers
//   - Reference marking, so a driver error can carry a library error kind
//
// On top of that it defines the error taxonomy of the topic map engine.
// Every kind is a sentinel checked with errors.Is (or the IsXxxError helpers):
//
//	if errors.IsOntologyViolation(err) {
//	    // pre-create the referenced topic or retry in lenient mode
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint           = crdb.WithHint
	WithHintf          = crdb.WithHintf
	WithDetail         = crdb.WithDetail
	WithDetailf        = crdb.WithDetailf
	WithSecondaryError = crdb.WithSecondaryError
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapOnce     = crdb.UnwrapOnce
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// GetStack returns the reportable stack trace attached to an error, if any.
var GetStack = crdb.GetReportableStackTrace

// AssertionFailedf reports a broken internal invariant.
var AssertionFailedf = crdb.AssertionFailedf

// Sentinel errors of the topic map engine.
// Wrap these with errors.Wrap() to add context while preserving the kind.
var (
	// ErrNotFound indicates a lookup that must produce a result found nothing
	ErrNotFound = New("not found")

	// ErrInvalidArgument indicates a required argument was missing or malformed
	ErrInvalidArgument = New("invalid argument")

	// ErrEmptyField indicates a required identifier-typed field normalized to nothing
	ErrEmptyField = Wrap(ErrInvalidArgument, "empty field")

	// ErrOntologyViolation indicates a STRICT ontology check failed
	ErrOntologyViolation = New("ontology violation")

	// ErrDuplicateIdentifier indicates a rename target is already in use
	ErrDuplicateIdentifier = New("duplicate identifier")

	// ErrProtectedTopic indicates an attempt to delete or rename a base topic
	ErrProtectedTopic = New("protected topic")

	// ErrIntegrity wraps failures reported by the storage engine itself
	ErrIntegrity = New("integrity error")

	// ErrForbidden indicates the caller does not hold the required relationship to a map
	ErrForbidden = New("forbidden")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsInvalidArgumentError checks if an error is or wraps ErrInvalidArgument.
// Empty field errors are invalid arguments too.
func IsInvalidArgumentError(err error) bool {
	return err != nil && Is(err, ErrInvalidArgument)
}

// IsEmptyFieldError checks if an error is or wraps ErrEmptyField
func IsEmptyFieldError(err error) bool {
	return err != nil && Is(err, ErrEmptyField)
}

// IsOntologyViolation checks if an error is or wraps ErrOntologyViolation
func IsOntologyViolation(err error) bool {
	return err != nil && Is(err, ErrOntologyViolation)
}

// IsDuplicateIdentifierError checks if an error is or wraps ErrDuplicateIdentifier
func IsDuplicateIdentifierError(err error) bool {
	return err != nil && Is(err, ErrDuplicateIdentifier)
}

// IsProtectedTopicError checks if an error is or wraps ErrProtectedTopic
func IsProtectedTopicError(err error) bool {
	return err != nil && Is(err, ErrProtectedTopic)
}

// IsIntegrityError checks if an error is, wraps, or is marked as ErrIntegrity
func IsIntegrityError(err error) bool {
	return err != nil && Is(err, ErrIntegrity)
}

// IsForbiddenError checks if an error is or wraps ErrForbidden
func IsForbiddenError(err error) bool {
	return err != nil && Is(err, ErrForbidden)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}

// NewInvalidRequestError creates an invalid-argument error with a formatted message
func NewInvalidRequestError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidArgument, Newf(format, args...).Error())
}

// NewEmptyFieldError reports that the named required field is empty
func NewEmptyFieldError(field string) error {
	return Wrapf(ErrEmptyField, "%s", field)
}

// NewOntologyViolationError creates an ontology violation with a formatted message
func NewOntologyViolationError(format string, args ...interface{}) error {
	return Wrap(ErrOntologyViolation, Newf(format, args...).Error())
}

// NewDuplicateIdentifierError creates a duplicate-identifier error with a formatted message
func NewDuplicateIdentifierError(format string, args ...interface{}) error {
	return Wrap(ErrDuplicateIdentifier, Newf(format, args...).Error())
}

// NewProtectedTopicError creates a protected-topic error with a formatted message
func NewProtectedTopicError(format string, args ...interface{}) error {
	return Wrap(ErrProtectedTopic, Newf(format, args...).Error())
}

// NewForbiddenError creates a forbidden error with a formatted message
func NewForbiddenError(format string, args ...interface{}) error {
	return Wrap(ErrForbidden, Newf(format, args...).Error())
}

// WrapIntegrity wraps a storage engine failure with context and marks it as
// ErrIntegrity. The original cause stays reachable through As.
func WrapIntegrity(err error, msg string) error {
	if err == nil {
		return nil
	}
	return Mark(Wrap(err, msg), ErrIntegrity)
}

// WrapIntegrityf is WrapIntegrity with a formatted message
func WrapIntegrityf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Mark(Wrapf(err, format, args...), ErrIntegrity)
}
