package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/immersion-facile/convention-core/internal/convention"
	"github.com/immersion-facile/convention-core/internal/logging"
	"github.com/immersion-facile/convention-core/internal/validation"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContextOr(ctx, base)

	pairs := []any{"service", serviceName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, convention.ErrPayloadChanged):
		return "payload_changed"
	case errors.Is(err, convention.ErrAlreadySigned):
		return "already_signed"
	case errors.Is(err, convention.ErrUnknownRole):
		return "unknown_role"
	case errors.Is(err, convention.ErrMissingSignatory):
		return "missing_signatory"
	case errors.Is(err, convention.ErrJustificationRequired):
		return "justification_required"
	case errors.Is(err, convention.ErrTransitionNotAllowed):
		return "transition_not_allowed"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}
	var domainErr *validation.Error
	if errors.As(err, &domainErr) {
		return "validation"
	}

	return "unexpected"
}
