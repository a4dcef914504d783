package processor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bracket/internal/services"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := New(server.URL, "secret", 5*time.Second, WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client, server
}

func TestCreateJobSendsAuthAndDecodesResponse(t *testing.T) {
	var gotPath, gotKey string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-API-Key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"job_id":"fj-100","status":"queued","eta_seconds":120}`))
	}))

	result, err := client.CreateJob(context.Background(), 42, []string{"s3://media/a.raw", "s3://media/b.raw"}, true)
	if err != nil {
		t.Fatalf("CreateJob returned error: %v", err)
	}
	if gotPath != "/jobs" {
		t.Errorf("request path = %q, want /jobs", gotPath)
	}
	if gotKey != "secret" {
		t.Errorf("X-API-Key = %q, want secret", gotKey)
	}
	if result.ExternalJobID != "fj-100" {
		t.Errorf("ExternalJobID = %q, want fj-100", result.ExternalJobID)
	}
	if result.Status != RemoteQueued {
		t.Errorf("Status = %q, want queued", result.Status)
	}
	if result.ETASeconds != 120 {
		t.Errorf("ETASeconds = %d, want 120", result.ETASeconds)
	}
}

func TestCreateJobRejectsEmptyMediaRefs(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty media refs")
	}))

	_, err := client.CreateJob(context.Background(), 42, nil, false)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestCreateJobRemoteFailureIsUpstream(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"job_id":"fj-7","status":"failed"}`))
	}))

	_, err := client.CreateJob(context.Background(), 1, []string{"s3://media/a.raw"}, false)
	if !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("error = %v, want ErrUpstream", err)
	}
}

func TestCreateJobMalformedPayloadIsUpstream(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"queued"}`))
	}))

	_, err := client.CreateJob(context.Background(), 1, []string{"s3://media/a.raw"}, false)
	if !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("error = %v, want ErrUpstream", err)
	}
}

func TestGetStatusDecodesCompletedJob(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jobs/fj-100/status" {
			t.Errorf("request path = %q, want /jobs/fj-100/status", r.URL.Path)
		}
		w.Write([]byte(`{"status":"completed","output_ref":"s3://out/fj-100.mov","metrics":{"frames":480}}`))
	}))

	result, err := client.GetStatus(context.Background(), "fj-100")
	if err != nil {
		t.Fatalf("GetStatus returned error: %v", err)
	}
	if result.Status != RemoteCompleted {
		t.Errorf("Status = %q, want completed", result.Status)
	}
	if result.OutputRef != "s3://out/fj-100.mov" {
		t.Errorf("OutputRef = %q, want s3://out/fj-100.mov", result.OutputRef)
	}
	if len(result.Metrics) == 0 {
		t.Error("expected metrics payload")
	}
}

func TestGetStatusServerErrorIsTransient(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))

	_, err := client.GetStatus(context.Background(), "fj-1")
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("error = %v, want ErrTransient", err)
	}
}

func TestGetStatusUnknownJobIsNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such job", http.StatusNotFound)
	}))

	_, err := client.GetStatus(context.Background(), "fj-missing")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestGetStatusBadRequestIsUpstream(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad id", http.StatusBadRequest)
	}))

	_, err := client.GetStatus(context.Background(), "fj-1")
	if !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("error = %v, want ErrUpstream", err)
	}
}

func TestGetStatusUnknownStateIsUpstream(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"paused"}`))
	}))

	_, err := client.GetStatus(context.Background(), "fj-1")
	if !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("error = %v, want ErrUpstream", err)
	}
}

func TestCancelJobPostsToCancelEndpoint(t *testing.T) {
	var gotMethod, gotPath string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))

	if err := client.CancelJob(context.Background(), "fj-9"); err != nil {
		t.Fatalf("CancelJob returned error: %v", err)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("method = %q, want POST", gotMethod)
	}
	if gotPath != "/jobs/fj-9/cancel" {
		t.Errorf("request path = %q, want /jobs/fj-9/cancel", gotPath)
	}
}

func TestNetworkFailureIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := New(url, "secret", time.Second)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	_, err = client.GetStatus(context.Background(), "fj-1")
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("error = %v, want ErrTransient", err)
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := New("", "key", time.Second); err == nil {
		t.Error("expected error for empty base url")
	}
	if _, err := New("https://processor.invalid", "", time.Second); err == nil {
		t.Error("expected error for empty api key")
	}
}
