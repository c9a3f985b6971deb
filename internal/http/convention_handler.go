package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/immersion-facile/convention-core/internal/application"
	"github.com/immersion-facile/convention-core/internal/calendar"
	"github.com/immersion-facile/convention-core/internal/convention"
	"github.com/immersion-facile/convention-core/internal/schedule"
	"github.com/immersion-facile/convention-core/internal/validation"
)

type conventionService interface {
	CreateConvention(ctx context.Context, params application.CreateConventionParams) (application.ConventionRecord, validation.Issues, error)
	GetConvention(ctx context.Context, id string) (application.ConventionRecord, error)
	ListConventions(ctx context.Context, params application.ListConventionsParams) ([]application.ConventionRecord, error)
	UpdateConvention(ctx context.Context, params application.UpdateConventionParams) (application.ConventionRecord, validation.Issues, error)
	SignConvention(ctx context.Context, params application.SignConventionParams) (application.ConventionRecord, error)
	TransitionConvention(ctx context.Context, params application.TransitionConventionParams) (application.ConventionRecord, error)
	ValidateConvention(ctx context.Context, c convention.Convention) validation.Issues
}

// ConventionHandler serves the /conventions endpoints.
type ConventionHandler struct {
	service   conventionService
	responder responder
	logger    *slog.Logger
}

// NewConventionHandler constructs a handler backed by service.
func NewConventionHandler(service conventionService, logger *slog.Logger) *ConventionHandler {
	return &ConventionHandler{service: service, responder: newResponder(logger), logger: defaultLogger(logger)}
}

func (h *ConventionHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req conventionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	input, err := req.toConvention()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	record, issues, err := h.service.CreateConvention(r.Context(), application.CreateConventionParams{Input: input})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	w.Header().Set("Location", "/conventions/"+record.Convention.ID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toConventionResponse(record, issues))
}

func (h *ConventionHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	conventionID, ok := h.conventionID(w, r)
	if !ok {
		return
	}

	record, err := h.service.GetConvention(r.Context(), conventionID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toConventionResponse(record, nil))
}

func (h *ConventionHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	params := application.ListConventionsParams{AgencyID: strings.TrimSpace(query.Get("agencyId"))}
	for _, value := range query["status"] {
		for _, status := range parseCSV(value) {
			params.Statuses = append(params.Statuses, convention.Status(status))
		}
	}

	records, err := h.service.ListConventions(r.Context(), params)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	response := listConventionsResponse{Conventions: make([]conventionResponse, 0, len(records))}
	for _, record := range records {
		response.Conventions = append(response.Conventions, toConventionResponse(record, nil))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, response)
}

func (h *ConventionHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	conventionID, ok := h.conventionID(w, r)
	if !ok {
		return
	}

	var req conventionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	input, err := req.toConvention()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	record, issues, err := h.service.UpdateConvention(r.Context(), application.UpdateConventionParams{
		ConventionID: conventionID,
		Version:      req.Version,
		Input:        input,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toConventionResponse(record, issues))
}

func (h *ConventionHandler) Sign(w http.ResponseWriter, r *http.Request, roleTag string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	conventionID, ok := h.conventionID(w, r)
	if !ok {
		return
	}

	role, err := convention.ParseRole(roleTag)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusNotFound, errUnknownRole)
		return
	}

	record, err := h.service.SignConvention(r.Context(), application.SignConventionParams{
		ConventionID: conventionID,
		Role:         role,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toConventionResponse(record, nil))
}

func (h *ConventionHandler) Transition(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	conventionID, ok := h.conventionID(w, r)
	if !ok {
		return
	}

	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	record, err := h.service.TransitionConvention(r.Context(), application.TransitionConventionParams{
		ConventionID:  conventionID,
		Version:       req.Version,
		Target:        convention.Status(req.Status),
		Justification: req.Justification,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toConventionResponse(record, nil))
}

func (h *ConventionHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req conventionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	input, err := req.toConvention()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	issues := h.service.ValidateConvention(r.Context(), input)
	h.responder.writeJSON(r.Context(), w, issuesStatus(issues), validationResponse{Valid: len(issues) == 0, Errors: nonNilIssues(issues)})
}

func (h *ConventionHandler) conventionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	conventionID, ok := ConventionIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidConventionID)
		return "", false
	}
	parsed, err := uuid.Parse(strings.TrimSpace(conventionID))
	if err != nil {
		handlerLogger(r.Context(), h.logger, "ConventionHandler", "conventionID").
			DebugContext(r.Context(), "rejected convention id", "convention_id", conventionID)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidConventionID)
		return "", false
	}
	return parsed.String(), true
}

// conventionRequest is the convention document. The schedule is decoded
// separately so the legacy shape can be converted against the convention
// dates. Older clients send acceptance flags instead of signature dates.
type conventionRequest struct {
	convention.Convention
	Schedule            json.RawMessage `json:"schedule"`
	BeneficiaryAccepted bool            `json:"beneficiaryAccepted,omitempty"`
	EnterpriseAccepted  bool            `json:"enterpriseAccepted,omitempty"`
	Version             int64           `json:"version,omitempty"`
}

func (r conventionRequest) toConvention() (convention.Convention, error) {
	c := r.Convention
	s, err := decodeSchedule(r.Schedule, c.DateStart, c.DateEnd)
	if err != nil {
		return convention.Convention{}, err
	}
	c.Schedule = s
	if r.BeneficiaryAccepted || r.EnterpriseAccepted {
		// legacy flags carry no instant; the submission day stands in for it
		acceptedAt := time.Now().UTC()
		if !c.DateSubmission.IsZero() {
			acceptedAt = c.DateSubmission.Time()
		}
		c = convention.ApplyLegacyAcceptance(c, r.BeneficiaryAccepted, r.EnterpriseAccepted, acceptedAt)
	}
	return c, nil
}

// decodeSchedule reads either the canonical schedule or the legacy
// simpleSchedule/selectedIndex shape.
func decodeSchedule(raw json.RawMessage, from, to calendar.Date) (schedule.Schedule, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return schedule.Schedule{}, nil
	}

	var probe struct {
		SimpleSchedule json.RawMessage `json:"simpleSchedule"`
		SelectedIndex  *int            `json:"selectedIndex"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return schedule.Schedule{}, err
	}

	if probe.SimpleSchedule != nil || probe.SelectedIndex != nil {
		var legacy schedule.LegacySchedule
		if err := json.Unmarshal(raw, &legacy); err != nil {
			return schedule.Schedule{}, err
		}
		if from.IsZero() || to.IsZero() {
			from, to = legacy.ComplexSchedule.Bounds()
		}
		return schedule.FromLegacy(legacy, from, to), nil
	}

	var s schedule.Schedule
	if err := json.Unmarshal(raw, &s); err != nil {
		return schedule.Schedule{}, err
	}
	return s, nil
}

type transitionRequest struct {
	Status        string `json:"status"`
	Justification string `json:"justification"`
	Version       int64  `json:"version,omitempty"`
}

type conventionResponse struct {
	Convention convention.Convention `json:"convention"`
	Version    int64                 `json:"version"`
	CreatedAt  string                `json:"createdAt"`
	UpdatedAt  string                `json:"updatedAt"`
	Issues     validation.Issues     `json:"issues,omitempty"`
}

func toConventionResponse(record application.ConventionRecord, issues validation.Issues) conventionResponse {
	return conventionResponse{
		Convention: record.Convention,
		Version:    record.Version,
		CreatedAt:  record.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:  record.UpdatedAt.UTC().Format(time.RFC3339Nano),
		Issues:     issues,
	}
}

type listConventionsResponse struct {
	Conventions []conventionResponse `json:"conventions"`
}

type validationResponse struct {
	Valid  bool              `json:"valid"`
	Errors validation.Issues `json:"errors"`
}

// issuesStatus answers 422 as soon as a check failed.
func issuesStatus(issues validation.Issues) int {
	if len(issues) > 0 {
		return http.StatusUnprocessableEntity
	}
	return http.StatusOK
}

func nonNilIssues(issues validation.Issues) validation.Issues {
	if issues == nil {
		return validation.Issues{}
	}
	return issues
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	return decoder.Decode(dst)
}

func parseCSV(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
