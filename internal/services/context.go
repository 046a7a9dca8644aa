package services

import "context"

// contextKey scopes values this package stores on a context.
type contextKey string

const (
	serviceKey   contextKey = "service"
	itemKeyKey   contextKey = "item_key"
	stageKey     contextKey = "stage"
	requestIDKey contextKey = "request_id"
)

func withString(ctx context.Context, key contextKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key contextKey) (string, bool) {
	value, ok := ctx.Value(key).(string)
	return value, ok && value != ""
}

// WithService tags ctx with the configured service being processed.
// Empty values leave ctx unchanged, as do the other With helpers.
func WithService(ctx context.Context, service string) context.Context {
	return withString(ctx, serviceKey, service)
}

func ServiceFromContext(ctx context.Context) (string, bool) { return stringFrom(ctx, serviceKey) }

// WithItemKey tags ctx with the identity key of the current work item.
func WithItemKey(ctx context.Context, key string) context.Context {
	return withString(ctx, itemKeyKey, key)
}

func ItemKeyFromContext(ctx context.Context) (string, bool) { return stringFrom(ctx, itemKeyKey) }

// WithStage tags ctx with the processing step, such as "extract" or "relocate".
func WithStage(ctx context.Context, stage string) context.Context {
	return withString(ctx, stageKey, stage)
}

func StageFromContext(ctx context.Context) (string, bool) { return stringFrom(ctx, stageKey) }

// WithRequestID tags ctx with the run's correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withString(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) (string, bool) { return stringFrom(ctx, requestIDKey) }
