package api

import (
	"encoding/json"
	"time"

	"bracket/internal/orders"
	"bracket/internal/qc"
	"bracket/internal/workflow"
)

// FromJob converts a job record to its API representation.
func FromJob(job *orders.ProcessingJob) Job {
	if job == nil {
		return Job{}
	}
	dto := Job{
		ID:            job.ID,
		ListingID:     job.ListingID,
		ExternalJobID: job.ExternalJobID,
		Status:        string(job.Status),
		InputRefs:     append([]string(nil), job.InputRefs...),
		OutputRef:     job.OutputRef,
		RetryCount:    job.RetryCount,
		ErrorMessage:  job.ErrorMessage,
		QueuedAt:      formatTimePtr(job.QueuedAt),
		StartedAt:     formatTimePtr(job.StartedAt),
		CompletedAt:   formatTimePtr(job.CompletedAt),
		LastFailedAt:  formatTimePtr(job.LastFailedAt),
		CreatedAt:     formatTime(job.CreatedAt),
		UpdatedAt:     formatTime(job.UpdatedAt),
	}
	if raw := job.MetricsJSON; raw != "" {
		dto.Metrics = json.RawMessage(raw)
	}
	return dto
}

// FromJobs converts a slice of job records into API DTOs.
func FromJobs(jobs []*orders.ProcessingJob) []Job {
	if len(jobs) == 0 {
		return nil
	}
	out := make([]Job, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, FromJob(job))
	}
	return out
}

// FromListing converts a listing record to its API representation.
func FromListing(listing *orders.Listing) Listing {
	if listing == nil {
		return Listing{}
	}
	return Listing{
		ID:                 listing.ID,
		Address:            listing.Address,
		OpsStatus:          string(listing.OpsStatus),
		IsRush:             listing.IsRush,
		ScheduledAt:        formatTimePtr(listing.ScheduledAt),
		EditingStartedAt:   formatTimePtr(listing.EditingStartedAt),
		EditingCompletedAt: formatTimePtr(listing.EditingCompletedAt),
		DeliveredAt:        formatTimePtr(listing.DeliveredAt),
		UpdatedAt:          formatTime(listing.UpdatedAt),
		CreatedAt:          formatTime(listing.CreatedAt),
	}
}

// FromQCEntry converts a review-queue entry into its API representation.
func FromQCEntry(entry qc.Entry) QCEntry {
	return QCEntry{
		ListingID:     entry.ListingID,
		Address:       entry.Address,
		OpsStatus:     string(entry.OpsStatus),
		IsRush:        entry.IsRush,
		HoursWaiting:  entry.HoursWaiting,
		PriorityScore: entry.PriorityScore,
		PriorityLevel: entry.PriorityLevel,
	}
}

// FromQCEntries converts a review queue into API DTOs, preserving order.
func FromQCEntries(entries []qc.Entry) []QCEntry {
	if len(entries) == 0 {
		return nil
	}
	out := make([]QCEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, FromQCEntry(entry))
	}
	return out
}

// FromEvent converts an audit record to its API representation.
func FromEvent(event *orders.JobEvent) Event {
	if event == nil {
		return Event{}
	}
	dto := Event{
		ID:        event.ID,
		ListingID: event.ListingID,
		EventType: event.EventType,
		OldValue:  event.OldValue,
		NewValue:  event.NewValue,
		Actor:     event.Actor,
		Notes:     event.Notes,
		CreatedAt: formatTime(event.CreatedAt),
	}
	if event.JobID != nil {
		dto.JobID = *event.JobID
	}
	return dto
}

// FromEvents converts a slice of audit records into API DTOs.
func FromEvents(events []*orders.JobEvent) []Event {
	if len(events) == 0 {
		return nil
	}
	out := make([]Event, 0, len(events))
	for _, event := range events {
		out = append(out, FromEvent(event))
	}
	return out
}

// FromRetryResult converts a bulk retry aggregate into its API form.
func FromRetryResult(result *workflow.RetryResult) RetryOutcome {
	outcome := RetryOutcome{Retried: []int64{}, Failed: []RetryFailed{}}
	if result == nil {
		return outcome
	}
	outcome.Retried = append(outcome.Retried, result.Retried...)
	for _, failure := range result.Failed {
		outcome.Failed = append(outcome.Failed, RetryFailed{JobID: failure.JobID, Err: failure.Err})
	}
	return outcome
}

// FromHealth converts a store health summary into its API form.
func FromHealth(health orders.HealthSummary) Health {
	return Health{
		Total:      health.Total,
		Active:     health.Active,
		Failed:     health.Failed,
		Completed:  health.Completed,
		Cancelled:  health.Cancelled,
		AwaitingQC: health.AwaitingQC,
	}
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(dateTimeFormat)
}

func formatTimePtr(value *time.Time) string {
	if value == nil {
		return ""
	}
	return formatTime(*value)
}
