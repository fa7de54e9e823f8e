package store

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// ErrorKind categorizes store failures.
type ErrorKind string

const (
	// KindNotFound indicates an unknown document, user or string reference.
	KindNotFound ErrorKind = "NOT_FOUND"

	// KindConflict indicates the target of a create or rename already exists.
	KindConflict ErrorKind = "CONFLICT"

	// KindInvalid indicates input the store refuses to apply.
	KindInvalid ErrorKind = "INVALID"

	// KindInternal indicates a storage failure that was not pre-checked.
	KindInternal ErrorKind = "INTERNAL"
)

// Error is the typed failure returned by store operations.
//
// Kind is the stable category callers switch on; Code narrows it
// (e.g. DOCUMENT_NOT_FOUND) and Message is human-readable detail.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a store error anywhere in err's chain.
// Returns KindInternal for errors that are not store errors.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// IsNotFound returns true if err is a KindNotFound store error.
func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}

// IsConflict returns true if err is a KindConflict store error.
func IsConflict(err error) bool {
	return err != nil && KindOf(err) == KindConflict
}

// IsInvalid returns true if err is a KindInvalid store error.
func IsInvalid(err error) bool {
	return err != nil && KindOf(err) == KindInvalid
}

func notFound(code, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: fmt.Sprintf(format, args...)}
}

func conflict(code, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: fmt.Sprintf(format, args...)}
}

func invalid(code, format string, args ...any) *Error {
	return &Error{Kind: KindInvalid, Code: code, Message: fmt.Sprintf(format, args...)}
}

// classifyConstraint maps SQLite constraint failures onto store kinds.
// Foreign key failures mean a referenced row is missing; unique failures
// mean the row already exists. Anything else is returned unchanged.
func classifyConstraint(err error, message string) error {
	var se sqlite3.Error
	if !errors.As(err, &se) || se.Code != sqlite3.ErrConstraint {
		return err
	}
	switch se.ExtendedCode {
	case sqlite3.ErrConstraintForeignKey:
		return &Error{Kind: KindNotFound, Code: "REFERENCE_NOT_FOUND", Message: message, Err: err}
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return &Error{Kind: KindConflict, Code: "ALREADY_EXISTS", Message: message, Err: err}
	}
	return err
}
