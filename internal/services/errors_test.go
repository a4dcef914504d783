package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"bracket/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	base := fmt.Errorf("connection refused")
	err := services.Wrap(services.ErrTransient, "processor", "getStatus", "request failed", base)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped cause to survive, got %v", err)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "processor", "createJob", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected nil marker to default to transient, got %v", err)
	}
}

func TestKind(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{services.Wrap(services.ErrValidation, "workflow", "submit", "no media refs", nil), "validation"},
		{services.Wrap(services.ErrNotFound, "workflow", "poll", "unknown job", nil), "not_found"},
		{services.Wrap(services.ErrUpstream, "processor", "createJob", "rejected", nil), "upstream"},
		{services.Wrap(services.ErrConflict, "pipeline", "transition", "row changed", nil), "conflict"},
		{errors.New("plain"), "internal"},
	}
	for _, tc := range cases {
		if got := services.Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	if !services.IsRetryable(services.ErrConflict) {
		t.Fatal("conflicts should be retryable")
	}
	if !services.IsRetryable(services.ErrTransient) {
		t.Fatal("transient failures should be retryable")
	}
	if services.IsRetryable(services.ErrValidation) {
		t.Fatal("validation failures are not retryable")
	}
}

func TestContextRoundTrips(t *testing.T) {
	ctx := services.WithListingID(context.Background(), 42)
	ctx = services.WithJobID(ctx, 7)
	ctx = services.WithActor(ctx, "qc-reviewer")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.ListingIDFromContext(ctx); !ok || id != 42 {
		t.Fatalf("listing id = %d, %v", id, ok)
	}
	if id, ok := services.JobIDFromContext(ctx); !ok || id != 7 {
		t.Fatalf("job id = %d, %v", id, ok)
	}
	if actor, ok := services.ActorFromContext(ctx); !ok || actor != "qc-reviewer" {
		t.Fatalf("actor = %q, %v", actor, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("request id = %q, %v", rid, ok)
	}
}
