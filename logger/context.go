package logger

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

// Logger context keys
const (
	LoggerKey ContextKey = "logger"
)

// FromContext retrieves the logger from the context
// If no logger is found, it returns the default logger
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithLogger adds a logger to the context
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// WithSubm tags every later log line with the submission uuid
func WithSubm(ctx context.Context, submUuid uuid.UUID) context.Context {
	return WithLogger(ctx, FromContext(ctx).With("subm_uuid", submUuid))
}

// WithPhase tags every later log line with the phase id
func WithPhase(ctx context.Context, phaseID int64) context.Context {
	return WithLogger(ctx, FromContext(ctx).With("phase_id", phaseID))
}
