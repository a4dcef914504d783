package ipc

import "bracket/internal/api"

// Job mirrors the API job DTO for IPC callers.
type Job = api.Job

// Listing mirrors the API listing DTO for IPC callers.
type Listing = api.Listing

// QCEntry mirrors the API review-queue DTO for IPC callers.
type QCEntry = api.QCEntry

// Event mirrors the API audit DTO for IPC callers.
type Event = api.Event

// PingRequest probes daemon liveness.
type PingRequest struct{}

// PingResponse carries the daemon process id.
type PingResponse struct {
	PID int `json:"pid"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents combined daemon/order status information.
type StatusResponse struct {
	Running    bool       `json:"running"`
	PID        int        `json:"pid"`
	StartedAt  string     `json:"startedAt"`
	DBPath     string     `json:"dbPath"`
	LockPath   string     `json:"lockPath"`
	SocketPath string     `json:"socketPath"`
	Health     api.Health `json:"health"`
}

// SubmitRequest creates a fusion job for a listing's assets.
type SubmitRequest struct {
	ListingID int64   `json:"listingId"`
	AssetIDs  []int64 `json:"assetIds"`
	Actor     string  `json:"actor"`
}

// SubmitResponse contains the created job.
type SubmitResponse struct {
	Job Job `json:"job"`
}

// PollRequest reconciles one job with the remote processor.
type PollRequest struct {
	JobID int64  `json:"jobId"`
	Actor string `json:"actor"`
}

// PollResponse contains the job after reconciliation.
type PollResponse struct {
	Job Job `json:"job"`
}

// RetryRequest resubmits one failed job.
type RetryRequest struct {
	JobID int64  `json:"jobId"`
	Actor string `json:"actor"`
}

// RetryResponse contains the resubmitted job.
type RetryResponse struct {
	Job Job `json:"job"`
}

// MarkRetryRequest flags a failed job for later resubmission.
type MarkRetryRequest struct {
	JobID int64  `json:"jobId"`
	Actor string `json:"actor"`
}

// MarkRetryResponse contains the flagged job.
type MarkRetryResponse struct {
	Job Job `json:"job"`
}

// RetryBatchRequest resubmits jobs matched by exactly one selector.
type RetryBatchRequest struct {
	JobID     *int64 `json:"jobId,omitempty"`
	ListingID *int64 `json:"listingId,omitempty"`
	All       bool   `json:"all"`
	Actor     string `json:"actor"`
}

// RetryBatchResponse aggregates per-job outcomes.
type RetryBatchResponse struct {
	Outcome api.RetryOutcome `json:"outcome"`
}

// CancelRequest withdraws a job that has not started processing.
type CancelRequest struct {
	JobID int64  `json:"jobId"`
	Actor string `json:"actor"`
}

// CancelResponse contains the cancelled job.
type CancelResponse struct {
	Job Job `json:"job"`
}

// JobListRequest filters jobs by status and optionally by listing.
type JobListRequest struct {
	Statuses  []string `json:"statuses"`
	ListingID int64    `json:"listingId"`
}

// JobListResponse contains matching jobs.
type JobListResponse struct {
	Jobs []Job `json:"jobs"`
}

// JobDescribeRequest fetches a single job and its audit trail.
type JobDescribeRequest struct {
	ID int64 `json:"id"`
}

// JobDescribeResponse contains the job and its events.
type JobDescribeResponse struct {
	Job    Job     `json:"job"`
	Events []Event `json:"events"`
}

// TransitionRequest moves a listing through the production pipeline.
type TransitionRequest struct {
	ListingID  int64  `json:"listingId"`
	Target     string `json:"target"`
	Actor      string `json:"actor"`
	Privileged bool   `json:"privileged"`
	Notes      string `json:"notes,omitempty"`
}

// TransitionResponse contains the updated listing.
type TransitionResponse struct {
	Listing Listing `json:"listing"`
}

// QCQueueRequest recomputes the review queue.
type QCQueueRequest struct{}

// QCQueueResponse contains review-queue entries in priority order.
type QCQueueResponse struct {
	Entries []QCEntry `json:"entries"`
}

// EventsRequest fetches a listing's audit trail.
type EventsRequest struct {
	ListingID int64 `json:"listingId"`
}

// EventsResponse contains audit records, oldest first.
type EventsResponse struct {
	Events []Event `json:"events"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports whether the test was sent.
type TestNotificationResponse struct {
	Sent bool `json:"sent"`
}

// LogTailRequest reads from the daemon log file. A negative Offset requests
// the last Limit lines; a non-negative Offset resumes from a prior response.
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit"`
	Follow     bool  `json:"follow"`
	WaitMillis int64 `json:"waitMillis,omitempty"`
}

// LogTailResponse carries log lines plus the offset to resume from.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}
