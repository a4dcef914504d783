package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bracket/internal/config"
	"bracket/internal/services"
)

// RemoteStatus is the job state reported by the fusion service.
type RemoteStatus string

const (
	RemoteQueued     RemoteStatus = "queued"
	RemoteProcessing RemoteStatus = "processing"
	RemoteCompleted  RemoteStatus = "completed"
	RemoteFailed     RemoteStatus = "failed"
)

// CreateJobResult is the fusion service's response to a job creation.
type CreateJobResult struct {
	ExternalJobID string       `json:"job_id"`
	Status        RemoteStatus `json:"status"`
	ETASeconds    int          `json:"eta_seconds"`
}

// JobStatusResult is the fusion service's report for one remote job.
type JobStatusResult struct {
	Status       RemoteStatus    `json:"status"`
	OutputRef    string          `json:"output_ref"`
	Metrics      json.RawMessage `json:"metrics"`
	ErrorMessage string          `json:"error_message"`
}

// HTTPDoer describes the HTTP client used by the fusion service client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client provides access to the external fusion service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient HTTPDoer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a fusion service client. The shared secret is injected here
// and sent as the X-API-Key header on every request.
func New(baseURL, apiKey string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("processor base url required")
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("processor api key required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// NewFromConfig creates a client from application configuration.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	return New(cfg.Processor.BaseURL, cfg.Processor.APIKey, time.Duration(cfg.Processor.RequestTimeout)*time.Second, opts...)
}

type createJobPayload struct {
	ListingID int64    `json:"listing_id"`
	MediaRefs []string `json:"media_refs"`
	Rush      bool     `json:"rush"`
}

// CreateJob submits a new fusion job for the given media references. It is
// not idempotent: repeated calls with identical arguments create distinct
// remote jobs, and deduplication is the caller's responsibility.
func (c *Client) CreateJob(ctx context.Context, listingID int64, mediaRefs []string, rush bool) (*CreateJobResult, error) {
	if len(mediaRefs) == 0 {
		return nil, services.Wrap(services.ErrValidation, "processor", "createJob", "media refs must not be empty", nil)
	}

	body, err := json.Marshal(createJobPayload{ListingID: listingID, MediaRefs: mediaRefs, Rush: rush})
	if err != nil {
		return nil, fmt.Errorf("marshal create payload: %w", err)
	}

	raw, err := c.do(ctx, http.MethodPost, c.baseURL+"/jobs", bytes.NewReader(body), "createJob")
	if err != nil {
		return nil, err
	}
	if err := validateCreatePayload(raw); err != nil {
		return nil, services.Wrap(services.ErrUpstream, "processor", "createJob", "malformed response", err)
	}

	var result CreateJobResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, services.Wrap(services.ErrUpstream, "processor", "createJob", "decode response", err)
	}
	if result.Status == RemoteFailed {
		return nil, services.Wrap(services.ErrUpstream, "processor", "createJob", "remote rejected job", nil)
	}
	return &result, nil
}

// GetStatus polls the fusion service for one job's state.
func (c *Client) GetStatus(ctx context.Context, externalJobID string) (*JobStatusResult, error) {
	externalJobID = strings.TrimSpace(externalJobID)
	if externalJobID == "" {
		return nil, services.Wrap(services.ErrValidation, "processor", "getStatus", "external job id required", nil)
	}

	raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/jobs/%s/status", c.baseURL, externalJobID), nil, "getStatus")
	if err != nil {
		return nil, err
	}
	if err := validateStatusPayload(raw); err != nil {
		return nil, services.Wrap(services.ErrUpstream, "processor", "getStatus", "malformed response", err)
	}

	var result JobStatusResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, services.Wrap(services.ErrUpstream, "processor", "getStatus", "decode response", err)
	}
	return &result, nil
}

// CancelJob asks the fusion service to abandon a job. Cancellation is
// cooperative: a job already processing may still run to completion.
func (c *Client) CancelJob(ctx context.Context, externalJobID string) error {
	externalJobID = strings.TrimSpace(externalJobID)
	if externalJobID == "" {
		return services.Wrap(services.ErrValidation, "processor", "cancelJob", "external job id required", nil)
	}
	_, err := c.do(ctx, http.MethodPost, fmt.Sprintf("%s/jobs/%s/cancel", c.baseURL, externalJobID), nil, "cancelJob")
	return err
}

func (c *Client) do(ctx context.Context, method, url string, body io.Reader, operation string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "processor", operation, fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "processor", operation, "read response", err)
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, services.Wrap(services.ErrTransient, "processor", operation,
			fmt.Sprintf("fusion service returned %d (latency=%v)", resp.StatusCode, latency), nil)
	case resp.StatusCode == http.StatusNotFound:
		return nil, services.Wrap(services.ErrNotFound, "processor", operation, "remote job not found", nil)
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, services.Wrap(services.ErrUpstream, "processor", operation,
			fmt.Sprintf("fusion service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))), nil)
	}
	return raw, nil
}
