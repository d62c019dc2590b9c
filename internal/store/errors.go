package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// ErrorCode categorizes storage-boundary failures.
type ErrorCode string

const (
	// CodeImmutableRecord indicates an attempted update or delete of a
	// sealed row. The row and all derived indexes are left untouched.
	CodeImmutableRecord ErrorCode = "IMMUTABLE_RECORD"

	// CodeForeignKey indicates a child row referencing a missing parent.
	CodeForeignKey ErrorCode = "FOREIGN_KEY"

	// CodeUniqueConstraint indicates a duplicate natural key. Distinct from
	// idempotent hash re-insert, which is a success, not an error.
	CodeUniqueConstraint ErrorCode = "UNIQUE_CONSTRAINT"

	// CodeInvalidHoleSet indicates a course hole set that is not 18 holes,
	// nor a contiguous 9-hole front or back half.
	CodeInvalidHoleSet ErrorCode = "INVALID_HOLE_SET"

	// CodeInvalidRange indicates a domain value outside its valid range.
	CodeInvalidRange ErrorCode = "INVALID_RANGE"
)

// Error is a typed storage failure. All violations of the store's
// invariants surface as *Error; none are logged and swallowed.
type Error struct {
	Code    ErrorCode
	Table   string
	Message string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("%s: %s (table=%s)", e.Code, e.Message, e.Table)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying driver error, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// IsImmutableViolation reports whether err is a rejected update/delete of a
// sealed row.
func IsImmutableViolation(err error) bool { return hasCode(err, CodeImmutableRecord) }

// IsForeignKeyViolation reports whether err is an orphaned-child rejection.
func IsForeignKeyViolation(err error) bool { return hasCode(err, CodeForeignKey) }

// IsUniqueViolation reports whether err is a duplicate natural key.
func IsUniqueViolation(err error) bool { return hasCode(err, CodeUniqueConstraint) }

// IsInvalidHoleSet reports whether err is a hole-set validation failure.
func IsInvalidHoleSet(err error) bool { return hasCode(err, CodeInvalidHoleSet) }

// IsInvalidRange reports whether err is a domain range validation failure.
func IsInvalidRange(err error) bool { return hasCode(err, CodeInvalidRange) }

func hasCode(err error, code ErrorCode) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// mapSQLiteError converts driver constraint errors into typed store errors.
// Trigger-raised aborts carry the 'immutable record' message prefix from
// schema.sql; foreign key and unique violations map from extended codes.
func mapSQLiteError(err error, table string) error {
	if err == nil {
		return nil
	}

	var se sqlite3.Error
	if !errors.As(err, &se) {
		return err
	}

	switch {
	case strings.Contains(se.Error(), "immutable record"):
		return &Error{Code: CodeImmutableRecord, Table: table, Message: se.Error(), cause: err}
	case se.ExtendedCode == sqlite3.ErrConstraintForeignKey:
		return &Error{Code: CodeForeignKey, Table: table, Message: "row references a missing parent", cause: err}
	case se.ExtendedCode == sqlite3.ErrConstraintUnique,
		se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey:
		return &Error{Code: CodeUniqueConstraint, Table: table, Message: "duplicate natural key", cause: err}
	}
	return err
}
