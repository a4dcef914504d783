package orders

import (
	"strings"
	"time"
)

// JobStatus represents the lifecycle of a processing job.
type JobStatus string

const (
	JobPending      JobStatus = "pending"
	JobQueued       JobStatus = "queued"
	JobProcessing   JobStatus = "processing"
	JobCompleted    JobStatus = "completed"
	JobFailed       JobStatus = "failed"
	JobCancelled    JobStatus = "cancelled"
	JobPendingRetry JobStatus = "pending_retry"
)

var allJobStatuses = []JobStatus{
	JobPending,
	JobQueued,
	JobProcessing,
	JobCompleted,
	JobFailed,
	JobCancelled,
	JobPendingRetry,
}

var jobStatusSet = func() map[JobStatus]struct{} {
	set := make(map[JobStatus]struct{}, len(allJobStatuses))
	for _, status := range allJobStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllJobStatuses returns the ordered list of known job statuses.
func AllJobStatuses() []JobStatus {
	cp := make([]JobStatus, len(allJobStatuses))
	copy(cp, allJobStatuses)
	return cp
}

// ParseJobStatus converts a string into a known JobStatus.
func ParseJobStatus(value string) (JobStatus, bool) {
	normalized := JobStatus(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := jobStatusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether the status is absorbing: no transition is valid
// out of completed or cancelled.
func (s JobStatus) IsTerminal() bool {
	return s == JobCompleted || s == JobCancelled
}

// IsActive reports whether the remote processor may still act on the job.
func (s JobStatus) IsActive() bool {
	return s == JobQueued || s == JobProcessing
}

// CanRetry reports whether a manual retry is valid from this status.
func (s JobStatus) CanRetry() bool {
	return s == JobFailed || s == JobPendingRetry
}

// CanCancel reports whether a cancel is valid from this status.
func (s JobStatus) CanCancel() bool {
	return s == JobPending || s == JobQueued
}

// ProcessingJob tracks one HDR fusion run submitted to the external
// processor for a listing's bracket sets.
type ProcessingJob struct {
	ID            int64
	ListingID     int64
	ExternalJobID string
	Status        JobStatus
	InputRefs     []string
	OutputRef     string
	MetricsJSON   string
	RetryCount    int
	ErrorMessage  string
	QueuedAt      *time.Time
	StartedAt     *time.Time
	CompletedAt   *time.Time
	LastFailedAt  *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SetFailed marks the job as failed with the given error message.
func (j *ProcessingJob) SetFailed(message string, at time.Time) {
	j.Status = JobFailed
	j.ErrorMessage = message
	failedAt := at.UTC()
	j.LastFailedAt = &failedAt
}

// SetCompleted records the remote result on the job.
func (j *ProcessingJob) SetCompleted(outputRef, metricsJSON string, at time.Time) {
	j.Status = JobCompleted
	j.OutputRef = outputRef
	j.MetricsJSON = metricsJSON
	j.ErrorMessage = ""
	completedAt := at.UTC()
	j.CompletedAt = &completedAt
}

// AssetQCStatus tracks the human review state of a single media asset.
type AssetQCStatus string

const (
	AssetQCPending    AssetQCStatus = "pending"
	AssetQCProcessing AssetQCStatus = "processing"
	AssetQCApproved   AssetQCStatus = "approved"
	AssetQCRejected   AssetQCStatus = "rejected"
)

// MediaAsset is one captured file belonging to a listing's media order. The
// core only ever updates QCStatus, never content or storage location.
type MediaAsset struct {
	ID          int64
	ListingID   int64
	Kind        string
	StoragePath string
	QCStatus    AssetQCStatus
	CreatedAt   time.Time
}

// Listing is the ops-relevant subset of a real-estate media order.
type Listing struct {
	ID                 int64
	Address            string
	OpsStatus          OpsStatus
	IsRush             bool
	ScheduledAt        *time.Time
	UpdatedAt          time.Time
	DeliveredAt        *time.Time
	EditingStartedAt   *time.Time
	EditingCompletedAt *time.Time
	PhotographerID     int64
	EditorID           int64
	CreatedAt          time.Time
}

// Audit event types recorded in the append-only job_events log.
const (
	EventStatusChanged    = "status_changed"
	EventJobSubmitted     = "job_submitted"
	EventJobStatusChanged = "job_status_changed"
	EventJobRetried       = "job_retried"
	EventJobCancelled     = "job_cancelled"
)

// JobEvent is an immutable audit record. Transition events carry the old and
// new ops status; job events carry the old and new job status or external id.
type JobEvent struct {
	ID        string
	ListingID int64
	JobID     *int64
	EventType string
	OldValue  string
	NewValue  string
	Actor     string
	Notes     string
	CreatedAt time.Time
}

// HealthSummary describes aggregated job counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Active     int
	Failed     int
	Completed  int
	Cancelled  int
	AwaitingQC int
}
