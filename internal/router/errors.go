package router

import (
	"errors"
	"fmt"
)

// ErrMissingOperation is returned when a request carries no operation field
var ErrMissingOperation = errors.New("request is missing the operation field")

// UnknownOperationError is returned when the named operation has no entry in
// the action catalogue
type UnknownOperationError struct {
	Name string
}

// Error implements the error interface
func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("unrecognized operation %q", e.Name)
}

// IsMissingOperation checks if an error reports an absent operation field
func IsMissingOperation(err error) bool {
	return errors.Is(err, ErrMissingOperation)
}

// IsUnknownOperation checks if an error reports an operation outside the
// catalogue
func IsUnknownOperation(err error) bool {
	var unknownErr *UnknownOperationError
	return errors.As(err, &unknownErr)
}
