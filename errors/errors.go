// Package errors provides error handling for apidefs.
//
// This package re-exports github.com/cockroachdb/errors, providing stack
// traces, wrapping, hints and details, plus the sentinel errors shared by the
// IDL parser, the converter, the catalog and the CLI.
//
// Usage:
//
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	if errors.Is(err, errors.ErrMalformedAST) {
//	    // abort this namespace
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
	WithHint        = crdb.WithHint
	WithHintf       = crdb.WithHintf
	WithDetail      = crdb.WithDetail
	WithDetailf     = crdb.WithDetailf
	WithSafeDetails = crdb.WithSafeDetails
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// GetStack returns the reportable stack trace attached to err, if any.
var GetStack = crdb.GetReportableStackTrace

// AssertionFailedf reports a broken internal invariant.
var AssertionFailedf = crdb.AssertionFailedf

// Sentinel errors. Wrap these to add context; test with Is.
var (
	// ErrMalformedAST indicates a declaration is missing a field the converter requires.
	// Conversion of the whole namespace is aborted.
	ErrMalformedAST = New("malformed IDL declaration")

	// ErrSyntax indicates the IDL source could not be parsed.
	ErrSyntax = New("IDL syntax error")

	// ErrNamespaceNotFound indicates no definition file exists for a namespace.
	ErrNamespaceNotFound = New("namespace not found")

	// ErrUnknownPreset indicates a filter named a preset that is not defined.
	ErrUnknownPreset = New("unknown preset")

	// ErrInvalidConfig indicates the configuration failed validation.
	ErrInvalidConfig = New("invalid configuration")

	// ErrOutOfDate indicates a generated catalog differs from its sources.
	ErrOutOfDate = New("catalog is out of date")
)

// IsNotFoundError reports whether err is or wraps ErrNamespaceNotFound.
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNamespaceNotFound)
}

// IsMalformedError reports whether err is or wraps ErrMalformedAST.
func IsMalformedError(err error) bool {
	return err != nil && Is(err, ErrMalformedAST)
}

// NewMalformedError creates a malformed-AST error with a formatted message.
func NewMalformedError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrMalformedAST)
}

// NewNotFoundError creates a namespace-not-found error with a formatted message.
func NewNotFoundError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrNamespaceNotFound)
}
