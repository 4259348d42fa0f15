package plugin

import (
	"errors"
	"fmt"
)

// NotFoundError is returned when a named plugin instance is not known to the
// registry.
type NotFoundError struct {
	// Name is the instance name that was requested.
	Name string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("plugin %s not found", e.Name)
}

// IsNotFound reports whether err is or wraps a *NotFoundError.
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// NewNotFoundError creates a NotFoundError for the given instance name.
func NewNotFoundError(name string) *NotFoundError {
	return &NotFoundError{Name: name}
}
