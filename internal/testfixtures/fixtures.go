package testfixtures

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/immersion-facile/convention-core/internal/application"
	"github.com/immersion-facile/convention-core/internal/calendar"
	"github.com/immersion-facile/convention-core/internal/convention"
	"github.com/immersion-facile/convention-core/internal/persistence"
	"github.com/immersion-facile/convention-core/internal/schedule"
)

var conventionCounter uint64

var referenceTime = time.Date(2022, time.June, 1, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// RegularWeek expands Monday to Friday, 08:00-12:00 and 13:00-16:00, over
// [from, to]: 35 hours per full week.
func RegularWeek(from, to calendar.Date) schedule.Schedule {
	return schedule.FromRegular(schedule.RegularSchedule{
		DayPeriods:  []schedule.DayPeriod{{0, 4}},
		TimePeriods: []schedule.TimePeriod{{Start: "08:00", End: "12:00"}, {Start: "13:00", End: "16:00"}},
	}, from, to)
}

// ConventionFixture is a deterministic convention that passes every rule
// unless options say otherwise.
type ConventionFixture struct {
	Convention convention.Convention
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ConventionOption configures the generated convention fixture.
type ConventionOption func(*ConventionFixture)

// NewConventionFixture returns an adult beneficiary's one week immersion,
// submitted 2022-06-01 and running 2022-06-13 to 2022-06-17, READY_TO_SIGN.
func NewConventionFixture(opts ...ConventionOption) ConventionFixture {
	idx := atomic.AddUint64(&conventionCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	start, end := calendar.MustParse("2022-06-13"), calendar.MustParse("2022-06-17")

	fixture := ConventionFixture{
		Convention: convention.Convention{
			ID:                  fmt.Sprintf("conv-%03d", idx),
			InternshipKind:      convention.KindImmersion,
			Status:              convention.StatusReadyToSign,
			AgencyID:            "agency-1",
			DateSubmission:      calendar.FromTime(referenceTime),
			DateStart:           start,
			DateEnd:             end,
			Siret:               "12345678901234",
			BusinessName:        "Boulangerie Martin",
			ImmersionAddress:    "1 rue de la Paix 75002 Paris",
			ImmersionObjective:  "Découvrir un métier",
			ImmersionActivities: "Pétrissage",
			Schedule:            RegularWeek(start, end),
			Signatories: convention.Signatories{
				Beneficiary: convention.Beneficiary{
					Identity:  convention.Identity{FirstName: "Léa", LastName: "Dupont", Email: "lea@exemple.fr", Phone: "0601020304"},
					Birthdate: calendar.MustParse("2000-01-01"),
				},
				EstablishmentRepresentative: convention.EstablishmentRepresentative{
					Identity: convention.Identity{FirstName: "Paul", LastName: "Martin", Email: "paul@boulangerie.fr", Phone: "0605060708"},
				},
			},
			EstablishmentTutor: convention.Tutor{
				FirstName: "Jean",
				LastName:  "Martin",
				Email:     "jean@boulangerie.fr",
				Phone:     "0605060709",
				Job:       "Boulanger",
			},
		},
		Version:   1,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithConventionID overrides the identifier.
func WithConventionID(id string) ConventionOption {
	return func(f *ConventionFixture) {
		f.Convention.ID = id
	}
}

// WithStatus overrides the status.
func WithStatus(status convention.Status) ConventionOption {
	return func(f *ConventionFixture) {
		f.Convention.Status = status
	}
}

// WithAgency overrides the agency.
func WithAgency(agencyID string) ConventionOption {
	return func(f *ConventionFixture) {
		f.Convention.AgencyID = agencyID
	}
}

// WithKind overrides the internship kind.
func WithKind(kind convention.InternshipKind) ConventionOption {
	return func(f *ConventionFixture) {
		f.Convention.InternshipKind = kind
	}
}

// WithDates moves the convention to [start, end] with a regular week schedule.
func WithDates(start, end calendar.Date) ConventionOption {
	return func(f *ConventionFixture) {
		f.Convention.DateStart = start
		f.Convention.DateEnd = end
		f.Convention.Schedule = RegularWeek(start, end)
	}
}

// WithSchedule replaces the schedule.
func WithSchedule(s schedule.Schedule) ConventionOption {
	return func(f *ConventionFixture) {
		f.Convention.Schedule = s
	}
}

// WithBirthdate overrides the beneficiary birthdate.
func WithBirthdate(birthdate calendar.Date) ConventionOption {
	return func(f *ConventionFixture) {
		f.Convention.Signatories.Beneficiary.Birthdate = birthdate
	}
}

// WithRepresentative adds a legal guardian.
func WithRepresentative() ConventionOption {
	return func(f *ConventionFixture) {
		f.Convention.Signatories.BeneficiaryRepresentative = &convention.BeneficiaryRepresentative{
			Identity: convention.Identity{FirstName: "Marc", LastName: "Dupont", Email: "marc@exemple.fr", Phone: "0611121314"},
		}
	}
}

// WithVersion overrides the stored version.
func WithVersion(version int64) ConventionOption {
	return func(f *ConventionFixture) {
		f.Version = version
	}
}

// WithTimestamps overrides the stored timestamps.
func WithTimestamps(created, updated time.Time) ConventionOption {
	return func(f *ConventionFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Record returns the fixture as an application record.
func (f ConventionFixture) Record() application.ConventionRecord {
	return application.ConventionRecord{
		Convention: f.Convention.Clone(),
		Version:    f.Version,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

// Persistence returns the fixture as a storage row.
func (f ConventionFixture) Persistence() persistence.Convention {
	payload, err := json.Marshal(f.Convention)
	if err != nil {
		panic(fmt.Sprintf("testfixtures: encode convention: %v", err))
	}
	return persistence.Convention{
		ID:             f.Convention.ID,
		Status:         string(f.Convention.Status),
		InternshipKind: string(f.Convention.InternshipKind),
		AgencyID:       f.Convention.AgencyID,
		DateStart:      f.Convention.DateStart.String(),
		DateEnd:        f.Convention.DateEnd.String(),
		Payload:        payload,
		Version:        f.Version,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
}
