package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"bracket/internal/config"
	"bracket/internal/notifications"
)

func testConfig(topic string) *config.Config {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = topic
	cfg.Notifications.Jobs = true
	cfg.Notifications.Delivery = true
	cfg.Notifications.Errors = true
	return &cfg
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	svc := notifications.NewService(testConfig(""))
	if err := svc.NotifyJobCompleted(context.Background(), 1, "s3://out/1.mov"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if svc.Enabled() {
		t.Error("noop notifier reported itself enabled")
	}
}

func TestNewServiceEnabledWithTopic(t *testing.T) {
	svc := notifications.NewService(testConfig("https://ntfy.invalid/bracket"))
	if !svc.Enabled() {
		t.Error("configured notifier reported itself disabled")
	}
}

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func captureServer(t *testing.T, got *captured) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got.title = r.Header.Get("Title")
		got.tags = r.Header.Get("Tags")
		got.priority = r.Header.Get("Priority")
		got.body = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	var got captured
	server := captureServer(t, &got)
	svc := notifications.NewService(testConfig(server.URL))

	tests := []struct {
		name           string
		notify         func(context.Context) error
		expectTitle    string
		expectBody     string
		expectTags     string
		expectPriority string
	}{
		{
			name: "job submitted",
			notify: func(ctx context.Context) error {
				return svc.NotifyJobSubmitted(ctx, 42, "fj-100")
			},
			expectTitle: "Bracket - Job Submitted",
			expectBody:  "Listing 42 submitted for fusion (remote job fj-100)",
			expectTags:  "bracket,job,submitted",
		},
		{
			name: "job completed",
			notify: func(ctx context.Context) error {
				return svc.NotifyJobCompleted(ctx, 42, "s3://out/42.mov")
			},
			expectTitle: "Bracket - Job Complete",
			expectBody:  "Fusion complete for listing 42\nOutput: s3://out/42.mov",
			expectTags:  "bracket,job,completed",
		},
		{
			name: "job failed",
			notify: func(ctx context.Context) error {
				return svc.NotifyJobFailed(ctx, 42, "exposure mismatch")
			},
			expectTitle:    "Bracket - Job Failed",
			expectBody:     "Fusion failed for listing 42: exposure mismatch",
			expectTags:     "bracket,job,failed",
			expectPriority: "high",
		},
		{
			name: "jobs retried with errors",
			notify: func(ctx context.Context) error {
				return svc.NotifyJobsRetried(ctx, 2, 1)
			},
			expectTitle: "Bracket - Jobs Retried (with errors)",
			expectBody:  "Resubmitted 2 jobs, 1 could not be resubmitted",
			expectTags:  "bracket,job,retried",
		},
		{
			name: "listing delivered",
			notify: func(ctx context.Context) error {
				return svc.NotifyListingDelivered(ctx, 7, "88 Harbor View Dr")
			},
			expectTitle:    "Bracket - Delivered",
			expectBody:     "Delivered: 88 Harbor View Dr (listing 7)",
			expectTags:     "bracket,listing,delivered",
			expectPriority: "high",
		},
		{
			name: "error",
			notify: func(ctx context.Context) error {
				return svc.NotifyError(ctx, errors.New("socket closed"), "poller")
			},
			expectTitle:    "Bracket - Error",
			expectBody:     "Error with poller: socket closed",
			expectTags:     "bracket,error,alert",
			expectPriority: "high",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got = captured{}
			if err := tc.notify(context.Background()); err != nil {
				t.Fatalf("notify returned error: %v", err)
			}
			if got.title != tc.expectTitle {
				t.Errorf("title = %q, want %q", got.title, tc.expectTitle)
			}
			if got.body != tc.expectBody {
				t.Errorf("body = %q, want %q", got.body, tc.expectBody)
			}
			if got.tags != tc.expectTags {
				t.Errorf("tags = %q, want %q", got.tags, tc.expectTags)
			}
			if got.priority != tc.expectPriority {
				t.Errorf("priority = %q, want %q", got.priority, tc.expectPriority)
			}
		})
	}
}

func TestCategoryTogglesSuppressSends(t *testing.T) {
	var got captured
	server := captureServer(t, &got)
	cfg := testConfig(server.URL)
	cfg.Notifications.Jobs = false
	cfg.Notifications.Delivery = false
	svc := notifications.NewService(cfg)

	if err := svc.NotifyJobCompleted(context.Background(), 1, ""); err != nil {
		t.Fatalf("NotifyJobCompleted returned error: %v", err)
	}
	if err := svc.NotifyListingDelivered(context.Background(), 1, ""); err != nil {
		t.Fatalf("NotifyListingDelivered returned error: %v", err)
	}
	if got.title != "" {
		t.Errorf("expected no request, saw title %q", got.title)
	}

	// Errors toggle stays on and still reaches the server.
	if err := svc.NotifyError(context.Background(), errors.New("boom"), ""); err != nil {
		t.Fatalf("NotifyError returned error: %v", err)
	}
	if got.title != "Bracket - Error" {
		t.Errorf("title = %q, want Bracket - Error", got.title)
	}
}

func TestSendReportsServerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic quota exceeded", http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)
	svc := notifications.NewService(testConfig(server.URL))

	err := svc.TestNotification(context.Background())
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
