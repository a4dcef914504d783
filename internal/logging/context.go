package logging

import (
	"context"
	"log/slog"

	"bracket/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldListingID is the standardized structured logging key for listing identifiers.
	FieldListingID = "listing_id"
	// FieldJobID is the standardized structured logging key for processing job identifiers.
	FieldJobID = "job_id"
	// FieldExternalJobID is the standardized structured logging key for remote processor job identifiers.
	FieldExternalJobID = "external_job_id"
	// FieldActor is the standardized structured logging key for the acting identity.
	FieldActor = "actor"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldEventType is the standardized structured logging key for audit event types.
	FieldEventType = "event_type"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := services.ListingIDFromContext(ctx); ok {
		fields = append(fields, slog.Int64(FieldListingID, id))
	}
	if id, ok := services.JobIDFromContext(ctx); ok {
		fields = append(fields, slog.Int64(FieldJobID, id))
	}
	if actor, ok := services.ActorFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldActor, actor))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
