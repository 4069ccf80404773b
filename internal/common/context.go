package common

import (
	"context"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRunID  contextKey = "run_id"
	ContextKeyCardID contextKey = "card"
)

// WithRunID adds the batch run ID to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, ContextKeyRunID, runID)
}

// RunIDFromContext extracts the batch run ID from context
func RunIDFromContext(ctx context.Context) string {
	if runID, ok := ctx.Value(ContextKeyRunID).(string); ok {
		return runID
	}
	return ""
}

// WithCard tags the context with the file name of the card being processed
func WithCard(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ContextKeyCardID, name)
}

// CardFromContext extracts the card file name from context
func CardFromContext(ctx context.Context) string {
	if name, ok := ctx.Value(ContextKeyCardID).(string); ok {
		return name
	}
	return ""
}
