package util

import (
	"context"
	"time"
)

// Context keys.
type ctxKey string

const (
	ctxKeyModule    ctxKey = "module"
	ctxKeyStartTime ctxKey = "start_time"
)

// ContextWithModule adds the owning module name to the context.
func ContextWithModule(ctx context.Context, module string) context.Context {
	return context.WithValue(ctx, ctxKeyModule, module)
}

// ModuleFromContext extracts the owning module name from context.
func ModuleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyModule).(string); ok {
		return v
	}
	return ""
}

// ContextWithStartTime adds the request start time to the context.
func ContextWithStartTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ctxKeyStartTime, t)
}

// StartTimeFromContext extracts the request start time from context.
func StartTimeFromContext(ctx context.Context) time.Time {
	if v, ok := ctx.Value(ctxKeyStartTime).(time.Time); ok {
		return v
	}
	return time.Time{}
}

// ElapsedTime returns the elapsed time since the start time in context.
func ElapsedTime(ctx context.Context) time.Duration {
	startTime := StartTimeFromContext(ctx)
	if startTime.IsZero() {
		return 0
	}
	return time.Since(startTime)
}
