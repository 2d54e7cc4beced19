package logging

import (
	"context"
	"log/slog"

	"modelbridge/internal/services"
)

// Structured logging keys shared across packages.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	// FieldApp names the external application being driven.
	FieldApp = "app"
	// FieldFormat names the intermediate format being attempted.
	FieldFormat    = "format"
	FieldEventType = "event_type"
	// FieldErrorHint carries a next step for whoever reads the warning.
	FieldErrorHint = "error_hint"
	FieldImpact    = "impact"
	FieldAlert     = "alert"
)

// ContextFields returns the request id, app and format stored in ctx as
// attributes, skipping whichever are absent.
func ContextFields(ctx context.Context) []Attr {
	if ctx == nil {
		return nil
	}
	lookups := []struct {
		key string
		get func(context.Context) (string, bool)
	}{
		{FieldRequestID, services.RequestIDFromContext},
		{FieldApp, services.AppFromContext},
		{FieldFormat, services.FormatFromContext},
	}
	var fields []Attr
	for _, l := range lookups {
		if v, ok := l.get(ctx); ok {
			fields = append(fields, String(l.key, v))
		}
	}
	return fields
}

// WithContext binds the fields from ContextFields to logger.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return slog.New(logger.Handler().WithAttrs(fields))
}
