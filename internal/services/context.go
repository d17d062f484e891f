package services

import "context"

type contextKey string

const (
	runIDKey   contextKey = "run_id"
	nodeKey    contextKey = "node"
	attemptKey contextKey = "attempt"
)

// WithRunID annotates context with the pipeline run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithNode annotates context with the graph node name.
func WithNode(ctx context.Context, node string) context.Context {
	if node == "" {
		return ctx
	}
	return context.WithValue(ctx, nodeKey, node)
}

// NodeFromContext returns the node name if present.
func NodeFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(nodeKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithAttempt annotates context with the current generation attempt number.
func WithAttempt(ctx context.Context, attempt int) context.Context {
	if attempt <= 0 {
		return ctx
	}
	return context.WithValue(ctx, attemptKey, attempt)
}

// AttemptFromContext extracts the generation attempt number if present.
func AttemptFromContext(ctx context.Context) (int, bool) {
	switch v := ctx.Value(attemptKey).(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}
