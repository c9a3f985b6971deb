package application

import (
	"time"

	"github.com/immersion-facile/convention-core/internal/calendar"
	"github.com/immersion-facile/convention-core/internal/convention"
	"github.com/immersion-facile/convention-core/internal/schedule"
	"github.com/immersion-facile/convention-core/internal/validation"
)

// ConventionRecord is a stored convention with its concurrency metadata.
type ConventionRecord struct {
	Convention convention.Convention
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CreateConventionParams wraps the data required to create a draft convention.
type CreateConventionParams struct {
	Input convention.Convention
}

// UpdateConventionParams wraps the data required to edit an existing convention.
// Version must match the stored version.
type UpdateConventionParams struct {
	ConventionID string
	Version      int64
	Input        convention.Convention
}

// SignConventionParams identifies the signatory signing a convention.
type SignConventionParams struct {
	ConventionID string
	Role         convention.Role
}

// TransitionConventionParams describes an administrative status change.
// A zero Version skips the staleness check.
type TransitionConventionParams struct {
	ConventionID  string
	Version       int64
	Target        convention.Status
	Justification string
}

// ListConventionsParams narrows convention listings.
type ListConventionsParams struct {
	Statuses []convention.Status
	AgencyID string
}

// ConventionRepositoryFilter narrows queries issued to the convention repository.
type ConventionRepositoryFilter struct {
	Statuses []convention.Status
	AgencyID string
}

// ExpandScheduleParams describes a regular schedule to expand over [From, To].
type ExpandScheduleParams struct {
	Regular schedule.RegularSchedule
	From    calendar.Date
	To      calendar.Date
}

// ValidateScheduleParams wraps a schedule document to check. A positive
// WeeklyCeilingMinutes below the default ceiling is enforced as well.
type ValidateScheduleParams struct {
	Schedule             schedule.Schedule
	WeeklyCeilingMinutes int
}

// ScheduleReport is the outcome of expanding or checking a schedule.
type ScheduleReport struct {
	Schedule    schedule.Schedule
	Weeks       []string
	WeeklyHours []float64
	Issues      validation.Issues
}
