package core

import "context"

type contextKey string

const (
	ctxKeySessionID contextKey = "session_id"
	ctxKeyRegion    contextKey = "region"
)

// ContextWithSessionID adds the browser session ID to ctx for logging.
func ContextWithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeySessionID, id)
}

// ContextWithRegion adds the active region to ctx for logging.
func ContextWithRegion(ctx context.Context, region string) context.Context {
	return context.WithValue(ctx, ctxKeyRegion, region)
}

// SessionIDFromContext extracts the session ID from ctx.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeySessionID).(string); ok {
		return v
	}
	return ""
}

// RegionFromContext extracts the active region from ctx.
func RegionFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRegion).(string); ok {
		return v
	}
	return ""
}
