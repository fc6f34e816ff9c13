// ABOUTME: This file provides context-aware structured logging for the answer pipeline
// ABOUTME: Supports request ID and pipeline stage propagation with JSON output format
package logger

import (
	"context"
	"log/slog"
	"os"
)

type ContextKey string

const (
	// Business context keys for pipeline observability
	RequestIDKey     ContextKey = "rag.request.id"
	PipelineStageKey ContextKey = "rag.pipeline.stage"
)

// ContextLogger provides context-aware logging for request-scoped fields
type ContextLogger struct {
	logger      *slog.Logger
	serviceName string
}

// NewContextLogger creates a new context-aware logger
func NewContextLogger(serviceName string) *ContextLogger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(os.Getenv("LOG_LEVEL")),
	}
	handler := slog.NewJSONHandler(os.Stdout, opts)

	return &ContextLogger{
		logger:      slog.New(handler),
		serviceName: serviceName,
	}
}

// NewContextLoggerFrom wraps an existing logger so pipeline logs share the
// process handler chain, including any OTLP export.
func NewContextLoggerFrom(serviceName string, logger *slog.Logger) *ContextLogger {
	if logger == nil {
		return NewContextLogger(serviceName)
	}
	return &ContextLogger{
		logger:      logger,
		serviceName: serviceName,
	}
}

// WithContext returns a logger with context values extracted and added as fields
func (cl *ContextLogger) WithContext(ctx context.Context) *slog.Logger {
	logger := cl.logger.With("service", cl.serviceName)

	var fields []any

	if requestID := ctx.Value(RequestIDKey); requestID != nil {
		fields = append(fields, string(RequestIDKey), requestID)
	}
	if stage := ctx.Value(PipelineStageKey); stage != nil {
		fields = append(fields, string(PipelineStageKey), stage)
	}

	if len(fields) > 0 {
		logger = logger.With(fields...)
	}

	return logger
}

// Context helper functions

// WithRequestID adds the request ID to context for observability
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithPipelineStage adds the current pipeline stage to context for observability
func WithPipelineStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, PipelineStageKey, stage)
}
