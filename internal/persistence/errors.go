package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a record with the same identifier already exists.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrVersionConflict is returned when an update was based on a stale version.
	ErrVersionConflict = errors.New("persistence: version conflict")
	// ErrConstraintViolation is returned when a record breaks a storage constraint.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
)
