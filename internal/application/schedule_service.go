package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/immersion-facile/convention-core/internal/calendar"
	"github.com/immersion-facile/convention-core/internal/schedule"
	"github.com/immersion-facile/convention-core/internal/validation"
)

// maxExpansionDays bounds the ranges a regular schedule may be expanded over.
const maxExpansionDays = 366

// ScheduleService expands and checks schedules without touching storage.
type ScheduleService struct {
	logger *slog.Logger
}

// NewScheduleService constructs a schedule service.
func NewScheduleService(logger *slog.Logger) *ScheduleService {
	return &ScheduleService{logger: defaultLogger(logger)}
}

func (s *ScheduleService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ScheduleService", operation, attrs...)
}

// ExpandSchedule turns a regular schedule into the canonical schedule over
// the requested dates and reports what is wrong with the result.
func (s *ScheduleService) ExpandSchedule(ctx context.Context, params ExpandScheduleParams) (report ScheduleReport, err error) {
	if s == nil {
		err = fmt.Errorf("ScheduleService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ExpandSchedule",
		"from", params.From.String(),
		"to", params.To.String(),
	)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "schedule expansion refused", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(ctx, "schedule expanded", "worked_days", report.Schedule.WorkedDays, "issue_count", len(report.Issues))
	}()

	vErr := &ValidationError{}
	if reason, ok := schedule.CheckDayPeriods(params.Regular.DayPeriods); !ok {
		vErr.add("dayPeriods", reason)
	}
	switch {
	case params.From.IsZero():
		vErr.add("from", "La date de début est obligatoire.")
	case params.To.IsZero():
		vErr.add("to", "La date de fin est obligatoire.")
	case params.To.Before(params.From):
		vErr.add("to", "La date de fin doit être après la date de début.")
	case calendar.Span(params.From, params.To) > maxExpansionDays:
		vErr.add("to", fmt.Sprintf("La période ne peut pas dépasser %d jours.", maxExpansionDays))
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	expanded := schedule.FromRegular(params.Regular, params.From, params.To)
	report = newScheduleReport(expanded, expanded.Check())
	return
}

// ValidateSchedule checks a schedule document: totals consistent with the
// days, dated and unique entries, well formed and non-overlapping periods,
// and weekly ceilings.
func (s *ScheduleService) ValidateSchedule(ctx context.Context, params ValidateScheduleParams) ScheduleReport {
	if s == nil {
		return ScheduleReport{}
	}

	doc := params.Schedule
	issues := doc.Check()
	if ceiling := params.WeeklyCeilingMinutes; ceiling > 0 && ceiling < schedule.MaxWeeklyMinutes {
		for _, reason := range schedule.CheckWeeklyCeiling(doc.ComplexSchedule, ceiling) {
			issues.Add("complexSchedule", reason)
		}
	}

	report := newScheduleReport(doc, issues)
	s.loggerWith(ctx, "ValidateSchedule").
		DebugContext(ctx, "schedule validated", "issue_count", len(report.Issues))
	return report
}

func newScheduleReport(s schedule.Schedule, issues validation.Issues) ScheduleReport {
	return ScheduleReport{
		Schedule:    s,
		Weeks:       schedule.WeekLabels(s.ComplexSchedule),
		WeeklyHours: schedule.WeeklyHours(s.ComplexSchedule),
		Issues:      issues,
	}
}
