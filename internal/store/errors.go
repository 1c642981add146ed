package store

import (
	"errors"
	"fmt"
)

// Common store errors
var (
	// ErrEmptyTableName is returned when a table operation is issued against
	// a handle bound to an empty collection name
	ErrEmptyTableName = errors.New("table name is empty")

	// ErrMissingKey is returned when a key-addressed operation is issued
	// without key attributes
	ErrMissingKey = errors.New("missing key attributes")

	// ErrConditionFailed is returned when a conditional mutation's condition
	// does not hold
	ErrConditionFailed = errors.New("condition check failed")
)

// StoreError wraps a backend failure with the operation and table it came
// from. The underlying error stays reachable through Unwrap so callers can
// still match backend-specific types.
type StoreError struct {
	Op    string // put, get, update, delete, scan
	Table string
	Err   error
}

// Error implements the error interface
func (e *StoreError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("store %s on table %s failed: %v", e.Op, e.Table, e.Err)
	}
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target error
func (e *StoreError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewStoreError creates a new store error
func NewStoreError(op, table string, err error) *StoreError {
	return &StoreError{Op: op, Table: table, Err: err}
}

// IsStoreError checks if an error originated in a store backend
func IsStoreError(err error) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr)
}

// IsConditionFailed checks if an error is a failed condition check
func IsConditionFailed(err error) bool {
	return errors.Is(err, ErrConditionFailed)
}
