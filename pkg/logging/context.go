package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey int

const (
	// loggerKey is the context key for the logger.
	loggerKey contextKey = iota
	// sourceKey is the context key for the active feed source ID.
	sourceKey
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from context, or returns the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}

	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}

	return Default()
}

// Ctx returns a logger from the context or the default logger.
// This is a shorter alias for FromContext.
func Ctx(ctx context.Context) *zerolog.Logger {
	return FromContext(ctx)
}

// WithSource adds the active feed source ID to the context so per-source
// failure attribution shows up on every log line beneath it.
func WithSource(ctx context.Context, sourceID string) context.Context {
	ctx = context.WithValue(ctx, sourceKey, sourceID)

	logger := FromContext(ctx)
	newLogger := logger.With().Str("source", sourceID).Logger()
	return WithLogger(ctx, &newLogger)
}

// SourceID extracts the active feed source ID from context.
func SourceID(ctx context.Context) string {
	if id, ok := ctx.Value(sourceKey).(string); ok {
		return id
	}
	return ""
}
