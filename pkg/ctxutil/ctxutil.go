// Package ctxutil carries request-scoped identifiers through context.Context.
package ctxutil

import "context"

type ctxKey string

const requestIDKey ctxKey = "request_id"

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx extracts the request ID from the context.
// Returns an empty string if absent.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// DetachRequestID returns a fresh background context that keeps only the
// request ID of ctx, for work that must outlive the request.
func DetachRequestID(ctx context.Context) context.Context {
	if id := RequestIDFromCtx(ctx); id != "" {
		return WithRequestID(context.Background(), id)
	}
	return context.Background()
}
