package http

import (
	"context"
	"log/slog"

	"github.com/immersion-facile/convention-core/internal/logging"
)

type contextKey string

const conventionIDContextKey contextKey = "convention_id"

// ContextWithConventionID injects the convention identifier resolved from the request path.
func ContextWithConventionID(ctx context.Context, conventionID string) context.Context {
	return context.WithValue(ctx, conventionIDContextKey, conventionID)
}

// ConventionIDFromContext extracts a convention identifier previously associated with the context.
func ConventionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(conventionIDContextKey).(string)
	return id, ok
}

// ContextWithLogger attaches the request scoped logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext returns the request scoped logger, if any.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
