package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/immersion-facile/convention-core/internal/calendar"
	"github.com/immersion-facile/convention-core/internal/convention"
	"github.com/immersion-facile/convention-core/internal/persistence"
	"github.com/immersion-facile/convention-core/internal/schedule"
)

type conventionRepoStub struct {
	records    map[string]ConventionRecord
	creates    int
	updates    int
	err        error
	lastFilter ConventionRepositoryFilter
}

func newConventionRepoStub() *conventionRepoStub {
	return &conventionRepoStub{records: make(map[string]ConventionRecord)}
}

func (s *conventionRepoStub) CreateConvention(ctx context.Context, record ConventionRecord) (ConventionRecord, error) {
	if s.err != nil {
		return ConventionRecord{}, s.err
	}
	if _, ok := s.records[record.Convention.ID]; ok {
		return ConventionRecord{}, persistence.ErrDuplicate
	}
	s.creates++
	record.Version = 1
	s.records[record.Convention.ID] = record
	return record, nil
}

func (s *conventionRepoStub) GetConvention(ctx context.Context, id string) (ConventionRecord, error) {
	if s.err != nil {
		return ConventionRecord{}, s.err
	}
	record, ok := s.records[id]
	if !ok {
		return ConventionRecord{}, persistence.ErrNotFound
	}
	return record, nil
}

func (s *conventionRepoStub) UpdateConvention(ctx context.Context, record ConventionRecord, expectedVersion int64) (ConventionRecord, error) {
	if s.err != nil {
		return ConventionRecord{}, s.err
	}
	current, ok := s.records[record.Convention.ID]
	if !ok {
		return ConventionRecord{}, persistence.ErrNotFound
	}
	if current.Version != expectedVersion {
		return ConventionRecord{}, persistence.ErrVersionConflict
	}
	s.updates++
	record.Version = expectedVersion + 1
	s.records[record.Convention.ID] = record
	return record, nil
}

func (s *conventionRepoStub) ListConventions(ctx context.Context, filter ConventionRepositoryFilter) ([]ConventionRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.lastFilter = filter
	out := make([]ConventionRecord, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, record)
	}
	return out, nil
}

var serviceNow = time.Date(2022, 6, 2, 10, 0, 0, 0, time.UTC)

func newTestConventionService(repo ConventionRepository) *ConventionService {
	return NewConventionService(repo, convention.DefaultRules(), func() string { return "conv-1" }, func() time.Time { return serviceNow })
}

func sampleInput() convention.Convention {
	start, end := calendar.MustParse("2022-06-13"), calendar.MustParse("2022-06-17")
	return convention.Convention{
		InternshipKind:      convention.KindImmersion,
		AgencyID:            "agency-1",
		DateSubmission:      calendar.MustParse("2022-06-01"),
		DateStart:           start,
		DateEnd:             end,
		Siret:               "12345678901234",
		BusinessName:        "Boulangerie Martin",
		ImmersionAddress:    "1 rue de la Paix 75002 Paris",
		ImmersionObjective:  "Découvrir un métier",
		ImmersionActivities: "Pétrissage",
		Schedule: schedule.FromRegular(schedule.RegularSchedule{
			DayPeriods:  []schedule.DayPeriod{{0, 4}},
			TimePeriods: []schedule.TimePeriod{{Start: "08:00", End: "12:00"}, {Start: "13:00", End: "16:00"}},
		}, start, end),
		Signatories: convention.Signatories{
			Beneficiary: convention.Beneficiary{
				Identity:  convention.Identity{FirstName: "Léa", LastName: "Dupont", Email: " Léa@Exemple.fr", Phone: "0601020304"},
				Birthdate: calendar.MustParse("2000-01-01"),
			},
			EstablishmentRepresentative: convention.EstablishmentRepresentative{
				Identity: convention.Identity{FirstName: "Paul", LastName: "Martin", Email: "paul@boulangerie.fr", Phone: "0605060708"},
			},
		},
		EstablishmentTutor: convention.Tutor{FirstName: "Jean", LastName: "Martin", Email: "jean@boulangerie.fr", Phone: "0605060709", Job: "Boulanger"},
	}
}

func createSample(t *testing.T, svc *ConventionService) ConventionRecord {
	t.Helper()
	record, issues, err := svc.CreateConvention(context.Background(), CreateConventionParams{Input: sampleInput()})
	if err != nil {
		t.Fatalf("CreateConvention returned error: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("expected a valid sample, got %+v", issues)
	}
	return record
}

func TestConventionService_CreateConvention(t *testing.T) {
	t.Parallel()

	repo := newConventionRepoStub()
	svc := newTestConventionService(repo)

	input := sampleInput()
	signedAt := serviceNow
	input.Status = convention.StatusValidated
	input.Signatories.Beneficiary.SignedAt = &signedAt
	input.DateSubmission = calendar.Date{}

	record, issues, err := svc.CreateConvention(context.Background(), CreateConventionParams{Input: input})
	if err != nil {
		t.Fatalf("CreateConvention returned error: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}

	c := record.Convention
	if c.ID != "conv-1" || c.Status != convention.StatusDraft || record.Version != 1 {
		t.Fatalf("unexpected record %+v", record)
	}
	if len(c.SignedRoles()) != 0 || c.SignatureFingerprint != "" {
		t.Fatalf("expected caller supplied signatures to be dropped")
	}
	if c.Signatories.Beneficiary.Email != "lea@exemple.fr" {
		t.Fatalf("expected normalised email, got %q", c.Signatories.Beneficiary.Email)
	}
	if c.DateSubmission != calendar.FromTime(serviceNow) {
		t.Fatalf("expected submission date to default to today, got %s", c.DateSubmission)
	}
	if c.Schedule.TotalHours != 35 || c.Schedule.WorkedDays != 5 {
		t.Fatalf("expected the schedule summary to be kept, got %+v", c.Schedule.Summary)
	}
	if repo.creates != 1 {
		t.Fatalf("expected one insert, got %d", repo.creates)
	}
}

func TestConventionService_CreateConvention_SavesDraftWithIssues(t *testing.T) {
	t.Parallel()

	repo := newConventionRepoStub()
	svc := newTestConventionService(repo)

	input := sampleInput()
	input.EstablishmentTutor.Email = "lea@exemple.fr"

	record, issues, err := svc.CreateConvention(context.Background(), CreateConventionParams{Input: input})
	if err != nil {
		t.Fatalf("CreateConvention returned error: %v", err)
	}
	if !issues.Has("establishmentTutor.email") {
		t.Fatalf("expected tutor email issue, got %+v", issues)
	}
	if _, ok := repo.records[record.Convention.ID]; !ok {
		t.Fatalf("expected the draft to be stored despite issues")
	}
}

func TestConventionService_CreateConvention_RejectsBrokenDocuments(t *testing.T) {
	t.Parallel()

	repo := newConventionRepoStub()
	svc := newTestConventionService(repo)

	input := sampleInput()
	input.InternshipKind = "apprenticeship"
	input.Schedule.ComplexSchedule[1].Date = input.Schedule.ComplexSchedule[0].Date

	_, _, err := svc.CreateConvention(context.Background(), CreateConventionParams{Input: input})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !vErr.Issues.Has("internshipKind") || !vErr.Issues.Has("schedule.complexSchedule.1.date") {
		t.Fatalf("unexpected issues %+v", vErr.Issues)
	}
	if repo.creates != 0 {
		t.Fatalf("expected nothing stored")
	}
}

func TestConventionService_CreateConvention_RejectsMismatchedTotals(t *testing.T) {
	t.Parallel()

	repo := newConventionRepoStub()
	svc := newTestConventionService(repo)

	input := sampleInput()
	input.Schedule.TotalHours = 99
	input.Schedule.WorkedDays = 1

	_, _, err := svc.CreateConvention(context.Background(), CreateConventionParams{Input: input})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !vErr.Issues.Has("schedule.totalHours") || !vErr.Issues.Has("schedule.workedDays") {
		t.Fatalf("expected both totals to be reported, got %+v", vErr.Issues)
	}
	if repo.creates != 0 {
		t.Fatalf("expected nothing stored")
	}
}

func TestConventionService_CreateConvention_MapsDuplicates(t *testing.T) {
	t.Parallel()

	repo := newConventionRepoStub()
	svc := newTestConventionService(repo)
	createSample(t, svc)

	if _, _, err := svc.CreateConvention(context.Background(), CreateConventionParams{Input: sampleInput()}); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestConventionService_Lifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newConventionRepoStub()
	svc := newTestConventionService(repo)
	record := createSample(t, svc)

	record, err := svc.TransitionConvention(ctx, TransitionConventionParams{
		ConventionID: record.Convention.ID,
		Version:      record.Version,
		Target:       "ready_to_sign",
	})
	if err != nil {
		t.Fatalf("TransitionConvention returned error: %v", err)
	}
	if record.Convention.Status != convention.StatusReadyToSign || record.Version != 2 {
		t.Fatalf("unexpected record after submission %+v", record)
	}

	steps := []struct {
		role convention.Role
		want convention.Status
	}{
		{role: convention.RoleBeneficiary, want: convention.StatusPartiallySigned},
		{role: convention.RoleEstablishmentRepresentative, want: convention.StatusInReview},
	}
	for _, step := range steps {
		record, err = svc.SignConvention(ctx, SignConventionParams{ConventionID: record.Convention.ID, Role: step.role})
		if err != nil {
			t.Fatalf("SignConvention(%s) returned error: %v", step.role, err)
		}
		if record.Convention.Status != step.want {
			t.Fatalf("after %s expected %s, got %s", step.role, step.want, record.Convention.Status)
		}
	}

	updates := repo.updates
	again, err := svc.SignConvention(ctx, SignConventionParams{ConventionID: record.Convention.ID, Role: convention.RoleBeneficiary})
	if err != nil {
		t.Fatalf("expected signing twice to succeed, got %v", err)
	}
	if again.Version != record.Version || repo.updates != updates {
		t.Fatalf("expected signing twice to leave the record untouched")
	}

	record, err = svc.TransitionConvention(ctx, TransitionConventionParams{
		ConventionID: record.Convention.ID,
		Target:       convention.StatusValidated,
	})
	if err != nil {
		t.Fatalf("TransitionConvention returned error: %v", err)
	}
	if record.Convention.Status != convention.StatusValidated || record.Convention.DateValidation == nil {
		t.Fatalf("expected a validated convention, got %+v", record.Convention)
	}
	if !record.Convention.DateValidation.Equal(serviceNow) {
		t.Fatalf("expected validation date %s, got %s", serviceNow, record.Convention.DateValidation)
	}
}

func TestConventionService_SignConvention_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("unknown convention", func(t *testing.T) {
		t.Parallel()
		svc := newTestConventionService(newConventionRepoStub())
		if _, err := svc.SignConvention(ctx, SignConventionParams{ConventionID: "missing", Role: convention.RoleBeneficiary}); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("draft cannot be signed", func(t *testing.T) {
		t.Parallel()
		svc := newTestConventionService(newConventionRepoStub())
		record := createSample(t, svc)
		if _, err := svc.SignConvention(ctx, SignConventionParams{ConventionID: record.Convention.ID, Role: convention.RoleBeneficiary}); !errors.Is(err, convention.ErrTransitionNotAllowed) {
			t.Fatalf("expected ErrTransitionNotAllowed, got %v", err)
		}
	})

	t.Run("absent signatory", func(t *testing.T) {
		t.Parallel()
		svc := newTestConventionService(newConventionRepoStub())
		record := createSample(t, svc)
		if _, err := svc.SignConvention(ctx, SignConventionParams{ConventionID: record.Convention.ID, Role: convention.RoleBeneficiaryRepresentative}); !errors.Is(err, convention.ErrMissingSignatory) {
			t.Fatalf("expected ErrMissingSignatory, got %v", err)
		}
	})

	t.Run("unknown role", func(t *testing.T) {
		t.Parallel()
		svc := newTestConventionService(newConventionRepoStub())
		record := createSample(t, svc)
		if _, err := svc.SignConvention(ctx, SignConventionParams{ConventionID: record.Convention.ID, Role: "tutor"}); !errors.Is(err, convention.ErrUnknownRole) {
			t.Fatalf("expected ErrUnknownRole, got %v", err)
		}
	})

	t.Run("rule failure", func(t *testing.T) {
		t.Parallel()
		repo := newConventionRepoStub()
		svc := newTestConventionService(repo)
		record := createSample(t, svc)
		stored := repo.records[record.Convention.ID]
		stored.Convention.Status = convention.StatusReadyToSign
		stored.Convention.Signatories.Beneficiary.Birthdate = calendar.MustParse("2010-01-01")
		repo.records[record.Convention.ID] = stored

		_, err := svc.SignConvention(ctx, SignConventionParams{ConventionID: record.Convention.ID, Role: convention.RoleBeneficiary})
		var vErr *ValidationError
		if !errors.As(err, &vErr) || !vErr.Issues.Has("signatories.beneficiary.birthdate") {
			t.Fatalf("expected a birthdate ValidationError, got %v", err)
		}
		if repo.updates != 0 {
			t.Fatalf("expected nothing written")
		}
	})
}

func TestConventionService_UpdateConvention(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("stale version", func(t *testing.T) {
		t.Parallel()
		svc := newTestConventionService(newConventionRepoStub())
		record := createSample(t, svc)
		_, _, err := svc.UpdateConvention(ctx, UpdateConventionParams{ConventionID: record.Convention.ID, Version: record.Version + 1, Input: sampleInput()})
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("missing convention", func(t *testing.T) {
		t.Parallel()
		svc := newTestConventionService(newConventionRepoStub())
		_, _, err := svc.UpdateConvention(ctx, UpdateConventionParams{ConventionID: "missing", Version: 1, Input: sampleInput()})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("content change drops signatures", func(t *testing.T) {
		t.Parallel()
		svc := newTestConventionService(newConventionRepoStub())
		record := createSample(t, svc)
		record, err := svc.TransitionConvention(ctx, TransitionConventionParams{ConventionID: record.Convention.ID, Target: convention.StatusReadyToSign})
		if err != nil {
			t.Fatalf("TransitionConvention returned error: %v", err)
		}
		record, err = svc.SignConvention(ctx, SignConventionParams{ConventionID: record.Convention.ID, Role: convention.RoleBeneficiary})
		if err != nil {
			t.Fatalf("SignConvention returned error: %v", err)
		}

		input := sampleInput()
		input.ImmersionActivities = "Pétrissage et cuisson"
		updated, issues, err := svc.UpdateConvention(ctx, UpdateConventionParams{ConventionID: record.Convention.ID, Version: record.Version, Input: input})
		if err != nil {
			t.Fatalf("UpdateConvention returned error: %v", err)
		}
		if len(issues) != 0 {
			t.Fatalf("expected no issues, got %+v", issues)
		}
		if updated.Convention.Status != convention.StatusReadyToSign || len(updated.Convention.SignedRoles()) != 0 {
			t.Fatalf("expected signatures dropped and READY_TO_SIGN, got %s %v", updated.Convention.Status, updated.Convention.SignedRoles())
		}
		if updated.Convention.ID != record.Convention.ID || updated.Version != record.Version+1 {
			t.Fatalf("unexpected identity or version %+v", updated)
		}
	})

	t.Run("rule failure goes back to draft", func(t *testing.T) {
		t.Parallel()
		svc := newTestConventionService(newConventionRepoStub())
		record := createSample(t, svc)
		record, err := svc.TransitionConvention(ctx, TransitionConventionParams{ConventionID: record.Convention.ID, Target: convention.StatusReadyToSign})
		if err != nil {
			t.Fatalf("TransitionConvention returned error: %v", err)
		}

		input := sampleInput()
		input.DateEnd = calendar.MustParse("2022-08-30")
		input.Signatories.Beneficiary.Birthdate = calendar.MustParse("2010-01-01")
		updated, issues, err := svc.UpdateConvention(ctx, UpdateConventionParams{ConventionID: record.Convention.ID, Version: record.Version, Input: input})
		if err != nil {
			t.Fatalf("UpdateConvention returned error: %v", err)
		}
		if !issues.Has("dateEnd") || !issues.Has("signatories.beneficiary.birthdate") {
			t.Fatalf("expected the rule failures to be reported, got %+v", issues)
		}
		if updated.Convention.Status != convention.StatusDraft {
			t.Fatalf("expected DRAFT, got %s", updated.Convention.Status)
		}

		_, err = svc.SignConvention(ctx, SignConventionParams{ConventionID: record.Convention.ID, Role: convention.RoleBeneficiary})
		if !errors.Is(err, convention.ErrTransitionNotAllowed) {
			t.Fatalf("expected ErrTransitionNotAllowed, got %v", err)
		}
	})

	t.Run("mismatched totals", func(t *testing.T) {
		t.Parallel()
		svc := newTestConventionService(newConventionRepoStub())
		record := createSample(t, svc)

		input := sampleInput()
		input.Schedule.TotalHours = 99
		_, _, err := svc.UpdateConvention(ctx, UpdateConventionParams{ConventionID: record.Convention.ID, Version: record.Version, Input: input})
		var vErr *ValidationError
		if !errors.As(err, &vErr) || !vErr.Issues.Has("schedule.totalHours") {
			t.Fatalf("expected a totalHours ValidationError, got %v", err)
		}
	})

	t.Run("unchanged content keeps signatures", func(t *testing.T) {
		t.Parallel()
		svc := newTestConventionService(newConventionRepoStub())
		record := createSample(t, svc)
		record, err := svc.TransitionConvention(ctx, TransitionConventionParams{ConventionID: record.Convention.ID, Target: convention.StatusReadyToSign})
		if err != nil {
			t.Fatalf("TransitionConvention returned error: %v", err)
		}
		record, err = svc.SignConvention(ctx, SignConventionParams{ConventionID: record.Convention.ID, Role: convention.RoleBeneficiary})
		if err != nil {
			t.Fatalf("SignConvention returned error: %v", err)
		}

		updated, _, err := svc.UpdateConvention(ctx, UpdateConventionParams{ConventionID: record.Convention.ID, Version: record.Version, Input: sampleInput()})
		if err != nil {
			t.Fatalf("UpdateConvention returned error: %v", err)
		}
		if updated.Convention.Status != convention.StatusPartiallySigned || !updated.Convention.Signatories.Beneficiary.Signed() {
			t.Fatalf("expected the signature to survive, got %s", updated.Convention.Status)
		}
	})
}

func TestConventionService_TransitionConvention_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	cases := map[string]struct {
		prepare func(*convention.Convention)
		params  TransitionConventionParams
		check   func(t *testing.T, err error)
	}{
		"unknown status": {
			params: TransitionConventionParams{Target: "ARCHIVED"},
			check: func(t *testing.T, err error) {
				var vErr *ValidationError
				if !errors.As(err, &vErr) || !vErr.Issues.Has("status") {
					t.Fatalf("expected status ValidationError, got %v", err)
				}
			},
		},
		"not allowed": {
			params: TransitionConventionParams{Target: convention.StatusValidated},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, convention.ErrTransitionNotAllowed) {
					t.Fatalf("expected ErrTransitionNotAllowed, got %v", err)
				}
			},
		},
		"missing justification": {
			params: TransitionConventionParams{Target: convention.StatusRejected, Justification: "  "},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, convention.ErrJustificationRequired) {
					t.Fatalf("expected ErrJustificationRequired, got %v", err)
				}
			},
		},
		"stale version": {
			params: TransitionConventionParams{Target: convention.StatusReadyToSign, Version: 7},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrConflict) {
					t.Fatalf("expected ErrConflict, got %v", err)
				}
			},
		},
		"invalid convention": {
			prepare: func(c *convention.Convention) {
				c.DateEnd = c.DateStart.AddDays(-1)
			},
			params: TransitionConventionParams{Target: convention.StatusReadyToSign},
			check: func(t *testing.T, err error) {
				var vErr *ValidationError
				if !errors.As(err, &vErr) || !vErr.Issues.Has("dateEnd") {
					t.Fatalf("expected dateEnd ValidationError, got %v", err)
				}
			},
		},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			repo := newConventionRepoStub()
			svc := newTestConventionService(repo)
			record := createSample(t, svc)
			if tc.prepare != nil {
				stored := repo.records[record.Convention.ID]
				tc.prepare(&stored.Convention)
				repo.records[record.Convention.ID] = stored
			}

			params := tc.params
			params.ConventionID = record.Convention.ID
			_, err := svc.TransitionConvention(ctx, params)
			tc.check(t, err)

			if repo.records[record.Convention.ID].Version != 1 {
				t.Fatalf("expected the stored convention to stay untouched")
			}
		})
	}
}

func TestConventionService_ListConventions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newConventionRepoStub()
	svc := newTestConventionService(repo)
	createSample(t, svc)

	records, err := svc.ListConventions(ctx, ListConventionsParams{Statuses: []convention.Status{"draft"}, AgencyID: " agency-1 "})
	if err != nil {
		t.Fatalf("ListConventions returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	if len(repo.lastFilter.Statuses) != 1 || repo.lastFilter.Statuses[0] != convention.StatusDraft || repo.lastFilter.AgencyID != "agency-1" {
		t.Fatalf("unexpected filter %+v", repo.lastFilter)
	}

	_, err = svc.ListConventions(ctx, ListConventionsParams{Statuses: []convention.Status{convention.StatusDraft, "ARCHIVED"}})
	var vErr *ValidationError
	if !errors.As(err, &vErr) || !vErr.Issues.Has("status.1") {
		t.Fatalf("expected status.1 ValidationError, got %v", err)
	}
}

func TestConventionService_ValidateConvention(t *testing.T) {
	t.Parallel()

	svc := newTestConventionService(nil)
	if issues := svc.ValidateConvention(context.Background(), sampleInput()); len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}

	input := sampleInput()
	input.DateEnd = calendar.MustParse("2022-07-20")
	issues := svc.ValidateConvention(context.Background(), input)
	if !issues.Has("dateEnd") {
		t.Fatalf("expected the calendar day cap to be reported, got %+v", issues)
	}

	input = sampleInput()
	input.Schedule.TotalHours = 99
	input.Schedule.WorkedDays = 1
	issues = svc.ValidateConvention(context.Background(), input)
	if !issues.Has("schedule.totalHours") || !issues.Has("schedule.workedDays") {
		t.Fatalf("expected the totals to be checked as sent, got %+v", issues)
	}
}

func TestMapConventionRepoError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	cases := map[string]struct {
		err  error
		want error
	}{
		"not found":   {err: fmt.Errorf("get: %w", persistence.ErrNotFound), want: ErrNotFound},
		"conflict":    {err: persistence.ErrVersionConflict, want: ErrConflict},
		"duplicate":   {err: persistence.ErrDuplicate, want: ErrAlreadyExists},
		"passthrough": {err: boom, want: boom},
	}
	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := mapConventionRepoError(tc.err); !errors.Is(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}

	var vErr *ValidationError
	if !errors.As(mapConventionRepoError(persistence.ErrConstraintViolation), &vErr) {
		t.Fatalf("expected constraint violations to surface as ValidationError")
	}
	if mapConventionRepoError(nil) != nil {
		t.Fatalf("expected nil to stay nil")
	}
}
