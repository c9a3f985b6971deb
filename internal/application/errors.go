package application

import (
	"errors"

	"github.com/immersion-facile/convention-core/internal/validation"
)

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrConflict is returned when the caller worked on a stale version of a resource.
	ErrConflict = errors.New("application: version conflict")
	// ErrAlreadyExists is returned when a resource with the same identifier is already stored.
	ErrAlreadyExists = errors.New("application: already exists")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	Issues validation.Issues
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.Issues) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(path, message string) {
	v.Issues.Add(path, message)
}

// merge copies entries from another validation error into the receiver, in order.
func (v *ValidationError) merge(prefix string, other *ValidationError) {
	if other == nil || len(other.Issues) == 0 {
		return
	}
	v.Issues.Merge(prefix, other.Issues)
}

// asValidationError converts the issue lists produced by the domain packages.
func asValidationError(err error) error {
	var domainErr *validation.Error
	if errors.As(err, &domainErr) {
		return &ValidationError{Issues: domainErr.Issues}
	}
	return err
}
