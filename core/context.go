package core

import "context"

// Context keys for generation options
type contextKey string

const (
	suppressHeaderKey contextKey = "suppressHeader"
	generationIDKey   contextKey = "generationID"
)

// WithSuppressHeader marks the context so progress messages are not logged.
func WithSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey, true)
}

// shouldSuppressHeader returns whether progress messages should be suppressed from context
func shouldSuppressHeader(ctx context.Context) bool {
	val := ctx.Value(suppressHeaderKey)
	if val == nil {
		return false // default: show progress
	}
	suppress, ok := val.(bool)
	return ok && suppress
}

// withGenerationID attaches the id under which a generation is recorded
func withGenerationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, generationIDKey, id)
}

// generationIDFrom returns the generation id from context, or ""
func generationIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(generationIDKey).(string)
	return id
}
