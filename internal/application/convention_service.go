package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/immersion-facile/convention-core/internal/calendar"
	"github.com/immersion-facile/convention-core/internal/convention"
	"github.com/immersion-facile/convention-core/internal/persistence"
	"github.com/immersion-facile/convention-core/internal/validation"
)

// ConventionRepository captures the persistence interactions needed by the service.
type ConventionRepository interface {
	CreateConvention(ctx context.Context, record ConventionRecord) (ConventionRecord, error)
	GetConvention(ctx context.Context, id string) (ConventionRecord, error)
	UpdateConvention(ctx context.Context, record ConventionRecord, expectedVersion int64) (ConventionRecord, error)
	ListConventions(ctx context.Context, filter ConventionRepositoryFilter) ([]ConventionRecord, error)
}

// ConventionService orchestrates validation, signatures and status changes for conventions.
type ConventionService struct {
	conventions ConventionRepository
	rules       convention.Rules
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewConventionService wires dependencies for convention operations.
func NewConventionService(conventions ConventionRepository, rules convention.Rules, idGenerator func() string, now func() time.Time) *ConventionService {
	return NewConventionServiceWithLogger(conventions, rules, idGenerator, now, nil)
}

// NewConventionServiceWithLogger constructs a convention service with a specified logger.
func NewConventionServiceWithLogger(conventions ConventionRepository, rules convention.Rules, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ConventionService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ConventionService{
		conventions: conventions,
		rules:       rules,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *ConventionService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ConventionService", operation, attrs...)
}

// CreateConvention stores a new draft. The draft is saved even when it breaks
// validity rules; those come back as issues. Only a structurally broken
// document is refused: an unknown kind, undated or repeated schedule days,
// or schedule totals that disagree with the days.
func (s *ConventionService) CreateConvention(ctx context.Context, params CreateConventionParams) (record ConventionRecord, issues validation.Issues, err error) {
	if s == nil {
		err = fmt.Errorf("ConventionService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateConvention",
		"agency_id", params.Input.AgencyID,
		"internship_kind", params.Input.InternshipKind,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create convention", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("convention_id", record.Convention.ID, "issue_count", len(issues)).InfoContext(ctx, "convention created")
	}()

	if vErr := validateDocument(params.Input); vErr.HasErrors() {
		err = vErr
		return
	}

	createdAt := s.now()
	draft := params.Input.Normalized().Unsigned()
	draft.ID = s.idGenerator()
	draft.Status = convention.StatusDraft
	draft.StatusJustification = ""
	draft.DateValidation = nil
	if draft.DateSubmission.IsZero() {
		draft.DateSubmission = calendar.FromTime(createdAt)
	}
	draft.Schedule.ComplexSchedule = draft.Schedule.ComplexSchedule.Sorted()

	record = ConventionRecord{Convention: draft, Version: 1, CreatedAt: createdAt, UpdatedAt: createdAt}
	if s.conventions != nil {
		var persisted ConventionRecord
		persisted, err = s.conventions.CreateConvention(ctx, record)
		if err != nil {
			err = mapConventionRepoError(err)
			return
		}
		record = persisted
	}

	issues = convention.Validate(record.Convention, s.rules)
	return
}

// GetConvention returns the stored convention with its version.
func (s *ConventionService) GetConvention(ctx context.Context, id string) (ConventionRecord, error) {
	if s == nil {
		return ConventionRecord{}, fmt.Errorf("ConventionService is nil")
	}
	if s.conventions == nil {
		return ConventionRecord{}, fmt.Errorf("convention repository not configured")
	}
	if strings.TrimSpace(id) == "" {
		return ConventionRecord{}, ErrNotFound
	}

	record, err := s.conventions.GetConvention(ctx, id)
	if err != nil {
		return ConventionRecord{}, mapConventionRepoError(err)
	}
	return record, nil
}

// ListConventions returns the stored conventions matching params in creation order.
func (s *ConventionService) ListConventions(ctx context.Context, params ListConventionsParams) ([]ConventionRecord, error) {
	if s == nil {
		return nil, fmt.Errorf("ConventionService is nil")
	}
	if s.conventions == nil {
		return nil, fmt.Errorf("convention repository not configured")
	}

	vErr := &ValidationError{}
	statuses := make([]convention.Status, 0, len(params.Statuses))
	for i, status := range params.Statuses {
		parsed, err := convention.ParseStatus(string(status))
		if err != nil {
			vErr.add(fmt.Sprintf("status.%d", i), fmt.Sprintf("Statut inconnu : %s.", status))
			continue
		}
		statuses = append(statuses, parsed)
	}
	if vErr.HasErrors() {
		return nil, vErr
	}

	records, err := s.conventions.ListConventions(ctx, ConventionRepositoryFilter{
		Statuses: statuses,
		AgencyID: strings.TrimSpace(params.AgencyID),
	})
	if err != nil {
		return nil, mapConventionRepoError(err)
	}
	return records, nil
}

// UpdateConvention replaces the content of a convention. Changing anything the
// signatories signed drops their signatures.
func (s *ConventionService) UpdateConvention(ctx context.Context, params UpdateConventionParams) (record ConventionRecord, issues validation.Issues, err error) {
	if s == nil {
		err = fmt.Errorf("ConventionService is nil")
		return
	}
	if s.conventions == nil {
		err = fmt.Errorf("convention repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateConvention",
		"convention_id", params.ConventionID,
		"version", params.Version,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update convention", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("status", record.Convention.Status, "issue_count", len(issues)).InfoContext(ctx, "convention updated")
	}()

	if vErr := validateDocument(params.Input); vErr.HasErrors() {
		err = vErr
		return
	}

	current, err := s.GetConvention(ctx, params.ConventionID)
	if err != nil {
		return
	}
	if current.Version != params.Version {
		err = fmt.Errorf("%w: convention %s is at version %d", ErrConflict, params.ConventionID, current.Version)
		return
	}

	input := params.Input
	edited, err := convention.Edit(current.Convention, s.rules, func(c *convention.Convention) {
		*c = input.Clone()
		if c.DateSubmission.IsZero() {
			c.DateSubmission = current.Convention.DateSubmission
		}
		c.DateValidation = current.Convention.DateValidation
		c.Schedule.ComplexSchedule = c.Schedule.ComplexSchedule.Sorted()
	})
	if err != nil {
		return
	}

	record, err = s.save(ctx, current, edited)
	if err != nil {
		return
	}
	issues = convention.Validate(record.Convention, s.rules)
	return
}

// SignConvention records the signature of role. Signing again an unchanged
// convention is a no-op that returns the stored record.
func (s *ConventionService) SignConvention(ctx context.Context, params SignConventionParams) (record ConventionRecord, err error) {
	if s == nil {
		err = fmt.Errorf("ConventionService is nil")
		return
	}
	if s.conventions == nil {
		err = fmt.Errorf("convention repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "SignConvention",
		"convention_id", params.ConventionID,
		"role", params.Role,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to sign convention", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("status", record.Convention.Status).InfoContext(ctx, "convention signed")
	}()

	current, err := s.GetConvention(ctx, params.ConventionID)
	if err != nil {
		return
	}

	signed, err := convention.Sign(current.Convention, params.Role, s.now(), s.rules)
	if errors.Is(err, convention.ErrAlreadySigned) {
		logger.DebugContext(ctx, "signature already recorded")
		return current, nil
	}
	if err != nil {
		err = asValidationError(err)
		return
	}

	record, err = s.save(ctx, current, signed)
	return
}

// TransitionConvention applies an administrative status change.
func (s *ConventionService) TransitionConvention(ctx context.Context, params TransitionConventionParams) (record ConventionRecord, err error) {
	if s == nil {
		err = fmt.Errorf("ConventionService is nil")
		return
	}
	if s.conventions == nil {
		err = fmt.Errorf("convention repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "TransitionConvention",
		"convention_id", params.ConventionID,
		"target", params.Target,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to change convention status", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("status", record.Convention.Status).InfoContext(ctx, "convention status changed")
	}()

	target, parseErr := convention.ParseStatus(string(params.Target))
	if parseErr != nil {
		vErr := &ValidationError{}
		vErr.add("status", fmt.Sprintf("Statut inconnu : %s.", params.Target))
		err = vErr
		return
	}

	current, err := s.GetConvention(ctx, params.ConventionID)
	if err != nil {
		return
	}
	if params.Version != 0 && current.Version != params.Version {
		err = fmt.Errorf("%w: convention %s is at version %d", ErrConflict, params.ConventionID, current.Version)
		return
	}

	next, err := convention.Transition(current.Convention, convention.TransitionRequest{
		Target:        target,
		Justification: params.Justification,
		At:            s.now(),
		Rules:         s.rules,
	})
	if err != nil {
		err = asValidationError(err)
		return
	}

	record, err = s.save(ctx, current, next)
	return
}

// ValidateConvention runs every validity rule without touching storage.
func (s *ConventionService) ValidateConvention(ctx context.Context, c convention.Convention) validation.Issues {
	if s == nil {
		return nil
	}
	issues := convention.Validate(c.Normalized(), s.rules)

	s.loggerWith(ctx, "ValidateConvention", "convention_id", c.ID).
		DebugContext(ctx, "convention validated", "issue_count", len(issues))
	return issues
}

func (s *ConventionService) save(ctx context.Context, current ConventionRecord, next convention.Convention) (ConventionRecord, error) {
	candidate := ConventionRecord{
		Convention: next,
		Version:    current.Version,
		CreatedAt:  current.CreatedAt,
		UpdatedAt:  s.now(),
	}
	persisted, err := s.conventions.UpdateConvention(ctx, candidate, current.Version)
	if err != nil {
		return ConventionRecord{}, mapConventionRepoError(err)
	}
	return persisted, nil
}

// validateDocument refuses documents that cannot be stored or reasoned about.
func validateDocument(c convention.Convention) *ValidationError {
	vErr := &ValidationError{}
	if !c.InternshipKind.Valid() {
		vErr.add("internshipKind", fmt.Sprintf("Type de stage inconnu : %q.", c.InternshipKind))
	}

	var structural validation.Issues
	for _, issue := range c.Schedule.Check() {
		if issue.Path != "complexSchedule" {
			structural = append(structural, issue)
		}
	}
	vErr.merge("schedule", &ValidationError{Issues: structural})
	return vErr
}

func mapConventionRepoError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, persistence.ErrVersionConflict):
		return ErrConflict
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	case errors.Is(err, persistence.ErrConstraintViolation):
		vErr := &ValidationError{}
		vErr.add("", "La convention ne respecte pas les contraintes de stockage.")
		return vErr
	}
	return err
}
