// Package apperr defines the error-kind taxonomy shared by the ingest
// pipeline and browse engine, so callers can branch on behavior
// (retry, surface to HTTP, log-and-continue) without string matching.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error the way the pipeline and browse engine need
// to react to it. It is not a replacement for the error's message.
type Kind string

const (
	KindInvalidInput Kind = "invalid_input"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindIO           Kind = "io_error"
	KindDecode       Kind = "decode_error"
	KindCatalog      Kind = "catalog_error"
	KindShuttingDown Kind = "shutting_down"
	KindInternal     Kind = "internal"
)

// Error wraps an underlying cause with a Kind.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a Kind-tagged error.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf builds a Kind-tagged error from a format string.
func Newf(kind Kind, op string, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the Kind from err, defaulting to KindInternal when
// err was not produced through this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err (or a wrapped cause) carries the given Kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
