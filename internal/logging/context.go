package logging

import (
	"context"
	"log/slog"

	"newsreel/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for pipeline run identifiers.
	FieldRunID = "run_id"
	// FieldNode is the standardized structured logging key for graph node names.
	FieldNode = "node"
	// FieldAttempt is the standardized structured logging key for generation attempt numbers.
	FieldAttempt = "attempt"
	// FieldEventType tags lifecycle events (node_start, node_complete, node_failure).
	FieldEventType = "event_type"
	// FieldSource is the standardized structured logging key for source adapter names.
	FieldSource = "source"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if node, ok := services.NodeFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldNode, node))
	}
	if attempt, ok := services.AttemptFromContext(ctx); ok {
		fields = append(fields, slog.Int(FieldAttempt, attempt))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
