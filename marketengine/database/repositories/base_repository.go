package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// RepositoryError wraps a storage-level failure with the operation and
// entity it happened on.
type RepositoryError struct {
	Operation string
	Entity    string
	Err       error
}

func (re *RepositoryError) Error() string {
	return fmt.Sprintf("repository error during %s for %s: %v", re.Operation, re.Entity, re.Err)
}

func (re *RepositoryError) Unwrap() error {
	return re.Err
}

// ConflictError signals a uniqueness violation.
type ConflictError struct {
	Entity string
	Field  string
	Value  any
}

func (ce *ConflictError) Error() string {
	return fmt.Sprintf("%s with %s %v already exists", ce.Entity, ce.Field, ce.Value)
}

// wrapErr standardizes error handling across repositories. Lookups return
// (nil, nil) on missing rows instead, so sql.ErrNoRows never escapes here.
func wrapErr(operation, entity string, err error) error {
	if err == nil {
		return nil
	}
	return &RepositoryError{Operation: operation, Entity: entity, Err: err}
}

// isNoRows reports whether err is the driver's missing-row sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
