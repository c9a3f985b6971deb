package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/immersion-facile/convention-core/internal/application"
	"github.com/immersion-facile/convention-core/internal/convention"
	"github.com/immersion-facile/convention-core/internal/validation"
)

var (
	errBadRequestBody      = errors.New("Le corps de la requête est invalide.")
	errInvalidConventionID = errors.New("Identifiant de convention invalide.")
	errUnknownRole         = errors.New("Rôle de signataire inconnu.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	return responder{logger: defaultLogger(logger)}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).WarnContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "Convention introuvable."})
	case errors.Is(err, application.ErrConflict):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "VERSION_CONFLICT",
			Message:   "La convention a été modifiée entre-temps. Rechargez-la avant de recommencer.",
		})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{ErrorCode: "ALREADY_EXISTS", Message: "Cette convention existe déjà."})
	case errors.Is(err, convention.ErrPayloadChanged):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "PAYLOAD_CHANGED",
			Message:   "La convention a changé depuis les premières signatures.",
		})
	case errors.Is(err, convention.ErrTransitionNotAllowed):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "TRANSITION_NOT_ALLOWED",
			Message:   "Ce changement de statut n'est pas possible.",
		})
	case errors.Is(err, convention.ErrUnknownRole):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: errUnknownRole.Error()})
	case errors.Is(err, convention.ErrMissingSignatory):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "MISSING_SIGNATORY",
			Message:   "Ce signataire n'existe pas sur la convention.",
		})
	case errors.Is(err, convention.ErrJustificationRequired):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			Message: localizedStatusMessage(http.StatusUnprocessableEntity),
			Errors:  validation.Issues{{Path: "statusJustification", Message: "Une justification est obligatoire."}},
		})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: localizedStatusMessage(http.StatusUnprocessableEntity),
				Errors:  vErr.Issues,
			})
			return
		}

		r.loggerFor(ctx).ErrorContext(ctx, "unexpected service error", "error", err, "error_kind", application.ErrorKind(err))
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: localizedStatusMessage(http.StatusInternalServerError)})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "La requête est invalide."
	case http.StatusNotFound:
		return "Ressource introuvable."
	case http.StatusMethodNotAllowed:
		return "Méthode non autorisée."
	case http.StatusConflict:
		return "La requête est en conflit avec l'état de la ressource."
	case http.StatusUnprocessableEntity:
		return "Les données saisies sont invalides."
	case http.StatusServiceUnavailable:
		return "Service indisponible."
	default:
		return "Une erreur interne est survenue."
	}
}

type errorResponse struct {
	ErrorCode string            `json:"errorCode,omitempty"`
	Message   string            `json:"message"`
	Errors    validation.Issues `json:"errors,omitempty"`
}
