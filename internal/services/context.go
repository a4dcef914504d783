package services

import "context"

type contextKey string

const (
	listingIDKey contextKey = "listing_id"
	jobIDKey     contextKey = "job_id"
	actorKey     contextKey = "actor"
	requestIDKey contextKey = "request_id"
)

// WithListingID annotates context with the listing identifier.
func WithListingID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, listingIDKey, id)
}

// ListingIDFromContext extracts the listing identifier if present.
func ListingIDFromContext(ctx context.Context) (int64, bool) {
	v := ctx.Value(listingIDKey)
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	default:
		return 0, false
	}
}

// WithJobID annotates context with the processing job identifier.
func WithJobID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, jobIDKey, id)
}

// JobIDFromContext extracts the processing job identifier if present.
func JobIDFromContext(ctx context.Context) (int64, bool) {
	v := ctx.Value(jobIDKey)
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	default:
		return 0, false
	}
}

// WithActor annotates context with the acting identity (operator, editor,
// scheduler) responsible for the mutation.
func WithActor(ctx context.Context, actor string) context.Context {
	if actor == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the acting identity if present.
func ActorFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(actorKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
