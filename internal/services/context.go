package services

import "context"

type contextKey struct{ name string }

var (
	requestIDKey = contextKey{"request_id"}
	appKey       = contextKey{"app"}
	formatKey    = contextKey{"format"}
)

// WithRequestID tags ctx with the conversion request identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withString(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the conversion request identifier, if any.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, requestIDKey)
}

// WithApp tags ctx with the external application currently being driven.
func WithApp(ctx context.Context, app string) context.Context {
	return withString(ctx, appKey, app)
}

func AppFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, appKey)
}

// WithFormat tags ctx with the intermediate format being attempted.
func WithFormat(ctx context.Context, format string) context.Context {
	return withString(ctx, formatKey, format)
}

func FormatFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, formatKey)
}

// withString leaves ctx untouched for empty values so an outer tag is never
// masked by a blank one.
func withString(ctx context.Context, key contextKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key contextKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok && v != ""
}
