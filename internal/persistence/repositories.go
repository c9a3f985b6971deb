package persistence

import "context"

// ConventionFilter narrows convention queries. Empty fields match everything.
type ConventionFilter struct {
	Statuses []string
	AgencyID string
}

// ConventionRepository stores conventions with optimistic concurrency.
type ConventionRepository interface {
	// CreateConvention stores a new record at version 1.
	CreateConvention(ctx context.Context, convention Convention) (Convention, error)
	GetConvention(ctx context.Context, id string) (Convention, error)
	// UpdateConvention replaces the record when its stored version equals
	// expectedVersion and returns it with the version incremented.
	UpdateConvention(ctx context.Context, convention Convention, expectedVersion int64) (Convention, error)
	ListConventions(ctx context.Context, filter ConventionFilter) ([]Convention, error)
}
