package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/immersion-facile/convention-core/internal/application"
	"github.com/immersion-facile/convention-core/internal/calendar"
	"github.com/immersion-facile/convention-core/internal/schedule"
	"github.com/immersion-facile/convention-core/internal/validation"
)

type scheduleService interface {
	ExpandSchedule(ctx context.Context, params application.ExpandScheduleParams) (application.ScheduleReport, error)
	ValidateSchedule(ctx context.Context, params application.ValidateScheduleParams) application.ScheduleReport
}

// ScheduleHandler serves the stateless /schedules endpoints.
type ScheduleHandler struct {
	service   scheduleService
	responder responder
}

// NewScheduleHandler constructs a handler backed by service.
func NewScheduleHandler(service scheduleService, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{service: service, responder: newResponder(logger)}
}

func (h *ScheduleHandler) Expand(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req expandScheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	report, err := h.service.ExpandSchedule(r.Context(), application.ExpandScheduleParams{
		Regular: req.Regular,
		From:    req.From,
		To:      req.To,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toScheduleResponse(report, wantsLegacy(r)))
}

func (h *ScheduleHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req validateScheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	doc, err := decodeSchedule(req.Schedule, calendar.Date{}, calendar.Date{})
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	report := h.service.ValidateSchedule(r.Context(), application.ValidateScheduleParams{
		Schedule:             doc,
		WeeklyCeilingMinutes: hoursToMinutes(req.WeeklyCeilingHours),
	})
	h.responder.writeJSON(r.Context(), w, issuesStatus(report.Issues), toScheduleResponse(report, wantsLegacy(r)))
}

type expandScheduleRequest struct {
	Regular schedule.RegularSchedule `json:"regular"`
	From    calendar.Date            `json:"from"`
	To      calendar.Date            `json:"to"`
}

type validateScheduleRequest struct {
	Schedule           json.RawMessage  `json:"schedule"`
	WeeklyCeilingHours *decimal.Decimal `json:"weeklyCeilingHours,omitempty"`
}

type scheduleResponse struct {
	Schedule    any               `json:"schedule"`
	Weeks       []string          `json:"weeks"`
	WeeklyHours []float64         `json:"weeklyHours"`
	Valid       bool              `json:"valid"`
	Errors      validation.Issues `json:"errors"`
}

func toScheduleResponse(report application.ScheduleReport, legacy bool) scheduleResponse {
	var doc any = report.Schedule
	if legacy {
		doc = schedule.ToLegacy(report.Schedule)
	}
	weeks, weekly := report.Weeks, report.WeeklyHours
	if weeks == nil {
		weeks = []string{}
	}
	if weekly == nil {
		weekly = []float64{}
	}
	return scheduleResponse{
		Schedule:    doc,
		Weeks:       weeks,
		WeeklyHours: weekly,
		Valid:       len(report.Issues) == 0,
		Errors:      nonNilIssues(report.Issues),
	}
}

func wantsLegacy(r *http.Request) bool {
	return strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("format")), "legacy")
}

// hoursToMinutes converts an optional hour amount, rounded to the minute.
func hoursToMinutes(hours *decimal.Decimal) int {
	if hours == nil || !hours.IsPositive() {
		return 0
	}
	return int(hours.Mul(decimal.NewFromInt(schedule.MinutesPerHour)).Round(0).IntPart())
}
