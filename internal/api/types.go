package api

import "encoding/json"

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Job describes a processing job in a transport-friendly format.
type Job struct {
	ID            int64           `json:"id"`
	ListingID     int64           `json:"listingId"`
	ExternalJobID string          `json:"externalJobId,omitempty"`
	Status        string          `json:"status"`
	InputRefs     []string        `json:"inputRefs,omitempty"`
	OutputRef     string          `json:"outputRef,omitempty"`
	Metrics       json.RawMessage `json:"metrics,omitempty"`
	RetryCount    int             `json:"retryCount"`
	ErrorMessage  string          `json:"errorMessage,omitempty"`
	QueuedAt      string          `json:"queuedAt,omitempty"`
	StartedAt     string          `json:"startedAt,omitempty"`
	CompletedAt   string          `json:"completedAt,omitempty"`
	LastFailedAt  string          `json:"lastFailedAt,omitempty"`
	CreatedAt     string          `json:"createdAt,omitempty"`
	UpdatedAt     string          `json:"updatedAt,omitempty"`
}

// Listing describes a listing's production state for API consumers.
type Listing struct {
	ID                 int64  `json:"id"`
	Address            string `json:"address"`
	OpsStatus          string `json:"opsStatus"`
	IsRush             bool   `json:"isRush"`
	ScheduledAt        string `json:"scheduledAt,omitempty"`
	EditingStartedAt   string `json:"editingStartedAt,omitempty"`
	EditingCompletedAt string `json:"editingCompletedAt,omitempty"`
	DeliveredAt        string `json:"deliveredAt,omitempty"`
	UpdatedAt          string `json:"updatedAt,omitempty"`
	CreatedAt          string `json:"createdAt,omitempty"`
}

// QCEntry is one row of the review queue.
type QCEntry struct {
	ListingID     int64  `json:"listingId"`
	Address       string `json:"address"`
	OpsStatus     string `json:"opsStatus"`
	IsRush        bool   `json:"isRush"`
	HoursWaiting  int    `json:"hoursWaiting"`
	PriorityScore int    `json:"priorityScore"`
	PriorityLevel string `json:"priorityLevel"`
}

// Event is one immutable audit record.
type Event struct {
	ID        string `json:"id"`
	ListingID int64  `json:"listingId"`
	JobID     int64  `json:"jobId,omitempty"`
	EventType string `json:"eventType"`
	OldValue  string `json:"oldValue,omitempty"`
	NewValue  string `json:"newValue,omitempty"`
	Actor     string `json:"actor"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// RetryOutcome reports an aggregate bulk retry result.
type RetryOutcome struct {
	Retried []int64       `json:"retried"`
	Failed  []RetryFailed `json:"failed"`
}

// RetryFailed is one job that could not be resubmitted.
type RetryFailed struct {
	JobID int64  `json:"jobId"`
	Err   string `json:"error"`
}

// Health aggregates job and review counts for status displays.
type Health struct {
	Total      int `json:"total"`
	Active     int `json:"active"`
	Failed     int `json:"failed"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
	AwaitingQC int `json:"awaitingQc"`
}
