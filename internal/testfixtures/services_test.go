package testfixtures

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/immersion-facile/convention-core/internal/application"
	"github.com/immersion-facile/convention-core/internal/calendar"
	"github.com/immersion-facile/convention-core/internal/convention"
	"github.com/immersion-facile/convention-core/internal/persistence"
	"github.com/immersion-facile/convention-core/internal/schedule"
)

func TestServiceFactoryNewConventionService(t *testing.T) {
	factory := NewServiceFactory()
	repo := NewMemoryConventions()

	svc := factory.NewConventionService(ConventionServiceDeps{Conventions: repo})
	input := NewConventionFixture().Convention

	record, _, err := svc.CreateConvention(context.Background(), application.CreateConventionParams{Input: input})
	if err != nil {
		t.Fatalf("CreateConvention returned error: %v", err)
	}

	if record.Convention.ID != "id-1" {
		t.Fatalf("expected generated ID id-1, got %q", record.Convention.ID)
	}
	if record.Convention.Status != convention.StatusDraft {
		t.Fatalf("expected DRAFT, got %s", record.Convention.Status)
	}
	if repo.Len() != 1 {
		t.Fatalf("expected repository to hold one convention, got %d", repo.Len())
	}
	if !record.CreatedAt.Equal(factory.Clock.Now()) {
		t.Fatalf("expected timestamp %v, got %v", factory.Clock.Now(), record.CreatedAt)
	}
}

func TestServiceFactoryHonoursOverrides(t *testing.T) {
	clock := NewClock(time.Date(2023, time.March, 1, 12, 0, 0, 0, time.UTC))
	factory := NewServiceFactory(WithClock(clock), WithIDGenerator(NewIDGenerator("conv")))

	svc := factory.NewConventionService(ConventionServiceDeps{Conventions: NewMemoryConventions()})
	record, _, err := svc.CreateConvention(context.Background(), application.CreateConventionParams{Input: NewConventionFixture().Convention})
	if err != nil {
		t.Fatalf("CreateConvention returned error: %v", err)
	}
	if record.Convention.ID != "conv-1" {
		t.Fatalf("expected conv-1, got %q", record.Convention.ID)
	}
	if !record.CreatedAt.Equal(clock.Now()) {
		t.Fatalf("expected clock time %v, got %v", clock.Now(), record.CreatedAt)
	}
}

func TestServiceFactoryDefaultsSubmissionToClockDay(t *testing.T) {
	factory := NewServiceFactory()
	today := factory.Clock.AdvanceDays(3)

	input := NewConventionFixture().Convention
	input.DateSubmission = calendar.Date{}
	svc := factory.NewConventionService(ConventionServiceDeps{Conventions: NewMemoryConventions()})

	record, _, err := svc.CreateConvention(context.Background(), application.CreateConventionParams{Input: input})
	if err != nil {
		t.Fatalf("CreateConvention returned error: %v", err)
	}
	if record.Convention.DateSubmission != today || today != factory.Clock.Today() {
		t.Fatalf("expected submission on %s, got %s", today, record.Convention.DateSubmission)
	}
}

func TestServiceFactoryNewScheduleService(t *testing.T) {
	factory := NewServiceFactory()
	svc := factory.NewScheduleService(nil)

	from, to := calendar.MustParse("2022-06-13"), calendar.MustParse("2022-06-19")
	report, err := svc.ExpandSchedule(context.Background(), application.ExpandScheduleParams{
		Regular: schedule.RegularSchedule{
			DayPeriods:  []schedule.DayPeriod{{0, 4}},
			TimePeriods: []schedule.TimePeriod{{Start: "09:00", End: "12:00"}},
		},
		From: from,
		To:   to,
	})
	if err != nil {
		t.Fatalf("ExpandSchedule returned error: %v", err)
	}
	if report.Schedule.WorkedDays != 5 {
		t.Fatalf("expected 5 worked days, got %d", report.Schedule.WorkedDays)
	}
}

func TestMemoryConventions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	base := ReferenceTime()
	draft := NewConventionFixture(WithConventionID("a"), WithStatus(convention.StatusDraft), WithTimestamps(base, base)).Record()
	review := NewConventionFixture(WithConventionID("b"), WithStatus(convention.StatusInReview), WithAgency("agency-2"),
		WithTimestamps(base.Add(time.Minute), base.Add(time.Minute))).Record()
	repo := NewMemoryConventions(draft, review)

	if _, err := repo.CreateConvention(ctx, draft); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if _, err := repo.GetConvention(ctx, "missing"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	updated, err := repo.UpdateConvention(ctx, draft, 1)
	if err != nil {
		t.Fatalf("UpdateConvention returned error: %v", err)
	}
	if updated.Version != 2 {
		t.Fatalf("expected version 2, got %d", updated.Version)
	}
	if _, err := repo.UpdateConvention(ctx, draft, 1); !errors.Is(err, persistence.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	all, err := repo.ListConventions(ctx, application.ConventionRepositoryFilter{})
	if err != nil {
		t.Fatalf("ListConventions returned error: %v", err)
	}
	if len(all) != 2 || all[0].Convention.ID != "a" || all[1].Convention.ID != "b" {
		t.Fatalf("unexpected list order: %+v", all)
	}

	filtered, err := repo.ListConventions(ctx, application.ConventionRepositoryFilter{
		Statuses: []convention.Status{convention.StatusInReview},
		AgencyID: "agency-2",
	})
	if err != nil {
		t.Fatalf("ListConventions returned error: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Convention.ID != "b" {
		t.Fatalf("unexpected filtered list: %+v", filtered)
	}

	repo.Err = errors.New("boom")
	if _, err := repo.GetConvention(ctx, "a"); err == nil || err.Error() != "boom" {
		t.Fatalf("expected injected error, got %v", err)
	}
}

func TestConventionFixtureIsValid(t *testing.T) {
	t.Parallel()

	fixture := NewConventionFixture()
	if issues := convention.Validate(fixture.Convention, convention.DefaultRules()); len(issues) != 0 {
		t.Fatalf("expected default fixture to be valid, got %v", issues)
	}

	minor := NewConventionFixture(WithBirthdate(calendar.MustParse("2005-01-01")), WithRepresentative())
	if issues := convention.Validate(minor.Convention, convention.DefaultRules()); len(issues) != 0 {
		t.Fatalf("expected minor fixture with representative to be valid, got %v", issues)
	}

	if p := fixture.Persistence(); p.ID != fixture.Convention.ID || len(p.Payload) == 0 || p.Status != "READY_TO_SIGN" {
		t.Fatalf("unexpected persistence form: %+v", p)
	}
}
