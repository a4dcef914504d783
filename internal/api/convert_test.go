package api

import (
	"testing"
	"time"

	"bracket/internal/orders"
	"bracket/internal/qc"
	"bracket/internal/workflow"
)

func TestFromJobFormatsTimestampsAndMetrics(t *testing.T) {
	started := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
	completed := started.Add(10 * time.Minute)
	job := &orders.ProcessingJob{
		ID:            3,
		ListingID:     12,
		ExternalJobID: "fj-3",
		Status:        orders.JobCompleted,
		InputRefs:     []string{"brackets/001.dng"},
		OutputRef:     "s3://out/3.mov",
		MetricsJSON:   `{"frames":120}`,
		RetryCount:    1,
		StartedAt:     &started,
		CompletedAt:   &completed,
		CreatedAt:     started,
		UpdatedAt:     completed,
	}

	dto := FromJob(job)
	if dto.Status != "completed" {
		t.Errorf("Status = %q, want completed", dto.Status)
	}
	if dto.StartedAt != "2026-04-02T09:30:00.000Z" {
		t.Errorf("StartedAt = %q", dto.StartedAt)
	}
	if dto.CompletedAt != "2026-04-02T09:40:00.000Z" {
		t.Errorf("CompletedAt = %q", dto.CompletedAt)
	}
	if string(dto.Metrics) != `{"frames":120}` {
		t.Errorf("Metrics = %s", dto.Metrics)
	}
	if dto.QueuedAt != "" {
		t.Errorf("QueuedAt = %q, want empty for nil timestamp", dto.QueuedAt)
	}
}

func TestFromEventCarriesJobID(t *testing.T) {
	jobID := int64(9)
	event := &orders.JobEvent{
		ID:        "evt-1",
		ListingID: 4,
		JobID:     &jobID,
		EventType: orders.EventJobRetried,
		OldValue:  "failed",
		NewValue:  "processing",
		Actor:     "coordinator",
		CreatedAt: time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC),
	}

	dto := FromEvent(event)
	if dto.JobID != 9 {
		t.Errorf("JobID = %d, want 9", dto.JobID)
	}
	if dto.EventType != orders.EventJobRetried {
		t.Errorf("EventType = %q", dto.EventType)
	}
}

func TestFromQCEntriesPreservesOrder(t *testing.T) {
	entries := []qc.Entry{
		{ListingID: 2, PriorityScore: 103, PriorityLevel: qc.LevelHigh},
		{ListingID: 1, PriorityScore: 51, PriorityLevel: qc.LevelLow},
	}

	dtos := FromQCEntries(entries)
	if len(dtos) != 2 {
		t.Fatalf("len = %d, want 2", len(dtos))
	}
	if dtos[0].ListingID != 2 || dtos[1].ListingID != 1 {
		t.Errorf("order = [%d, %d], want [2, 1]", dtos[0].ListingID, dtos[1].ListingID)
	}
}

func TestFromRetryResultNeverNil(t *testing.T) {
	outcome := FromRetryResult(nil)
	if outcome.Retried == nil || outcome.Failed == nil {
		t.Fatal("expected empty slices, not nil")
	}

	outcome = FromRetryResult(&workflow.RetryResult{
		Retried: []int64{1},
		Failed:  []workflow.RetryFailure{{JobID: 2, Err: "remote rejected job"}},
	})
	if len(outcome.Retried) != 1 || len(outcome.Failed) != 1 {
		t.Errorf("outcome = %+v", outcome)
	}
	if outcome.Failed[0].Err != "remote rejected job" {
		t.Errorf("Err = %q", outcome.Failed[0].Err)
	}
}
