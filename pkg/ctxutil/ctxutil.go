package ctxutil

import (
	"context"
	"strings"
)

type ctxKey string

const (
	reviewerKey  ctxKey = "reviewer"
	requestIDKey ctxKey = "request_id"
)

// WithReviewer stores the authenticated reviewer name in the context.
func WithReviewer(ctx context.Context, reviewer string) context.Context {
	return context.WithValue(ctx, reviewerKey, reviewer)
}

// ReviewerFromCtx extracts the reviewer name from the context.
// Returns "" and false if the value is missing, blank, or of the wrong type.
func ReviewerFromCtx(ctx context.Context) (string, bool) {
	r, ok := ctx.Value(reviewerKey).(string)
	if !ok || strings.TrimSpace(r) == "" {
		return "", false
	}
	return r, true
}

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
