package adapter

import (
	"errors"
	"strings"
)

// Constraint-violation classification, adapted from the teacher's
// dialect/sql/sqlgraph driver-agnostic SQLSTATE/error-code sniffing
// (spec.md §7 "thin but real improvement a production adapter layer
// needs"). These inspect the error chain a driver returns — DriverError
// unwraps to it, so the caller passes the error straight off Create/
// Update/Delete without unwrapping it first.

type errorCoder interface{ Code() string }
type errorNumberer interface{ Number() uint16 }
type sqlStateError interface{ SQLState() string }

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"

	mysqlDuplicateEntry         = 1062
	mysqlForeignKeyParent       = 1451
	mysqlForeignKeyChild        = 1452
	mysqlCheckConstraintViolate = 3819
)

// IsUniqueConstraintError reports whether err resulted from a database
// uniqueness-constraint violation (duplicate value in a unique index).
func IsUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := asError[sqlStateError](err); ok && e.SQLState() == pgUniqueViolation {
		return true
	}
	if e, ok := asError[errorCoder](err); ok && e.Code() == pgUniqueViolation {
		return true
	}
	if e, ok := asError[errorNumberer](err); ok && e.Number() == mysqlDuplicateEntry {
		return true
	}
	return containsAny(err.Error(),
		"Error 1062",
		"violates unique constraint",
		"UNIQUE constraint failed",
	)
}

// IsForeignKeyConstraintError reports whether err resulted from a
// foreign-key constraint violation (referenced row missing, or a parent
// row deleted while children still reference it).
func IsForeignKeyConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := asError[sqlStateError](err); ok && e.SQLState() == pgForeignKeyViolation {
		return true
	}
	if e, ok := asError[errorCoder](err); ok && e.Code() == pgForeignKeyViolation {
		return true
	}
	if e, ok := asError[errorNumberer](err); ok {
		if n := e.Number(); n == mysqlForeignKeyParent || n == mysqlForeignKeyChild {
			return true
		}
	}
	return containsAny(err.Error(),
		"Error 1451",
		"Error 1452",
		"violates foreign key constraint",
		"FOREIGN KEY constraint failed",
	)
}

// IsCheckConstraintError reports whether err resulted from a check
// constraint violation.
func IsCheckConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := asError[sqlStateError](err); ok && e.SQLState() == pgCheckViolation {
		return true
	}
	if e, ok := asError[errorCoder](err); ok && e.Code() == pgCheckViolation {
		return true
	}
	if e, ok := asError[errorNumberer](err); ok && e.Number() == mysqlCheckConstraintViolate {
		return true
	}
	return containsAny(err.Error(),
		"Error 3819",
		"violates check constraint",
		"CHECK constraint failed",
	)
}

// IsConstraintError reports whether err resulted from any of the three
// recognized constraint violations.
func IsConstraintError(err error) bool {
	return IsUniqueConstraintError(err) || IsForeignKeyConstraintError(err) || IsCheckConstraintError(err)
}

func asError[T any](err error) (T, bool) {
	var target T
	for err != nil {
		if e, ok := err.(T); ok {
			return e, true
		}
		err = errors.Unwrap(err)
	}
	return target, false
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
