package logging_test

import (
	"context"
	"testing"

	"bracket/internal/logging"
	"bracket/internal/services"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewDefaultsToText(t *testing.T) {
	logger, err := logging.New(logging.Options{})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger")
	}
}

func TestContextFields(t *testing.T) {
	ctx := services.WithListingID(context.Background(), 12)
	ctx = services.WithJobID(ctx, 34)
	ctx = services.WithActor(ctx, "editor")

	fields := logging.ContextFields(ctx)
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(fields))
	}
	keys := map[string]bool{}
	for _, f := range fields {
		keys[f.Key] = true
	}
	for _, want := range []string{logging.FieldListingID, logging.FieldJobID, logging.FieldActor} {
		if !keys[want] {
			t.Fatalf("missing field %q in %v", want, keys)
		}
	}
}

func TestWithContextNilLogger(t *testing.T) {
	logger := logging.WithContext(context.Background(), nil)
	if logger == nil {
		t.Fatal("expected fallback logger")
	}
	logger.Info("noop")
}
