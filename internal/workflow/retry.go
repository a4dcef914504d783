package workflow

import (
	"context"
	"fmt"
	"time"

	"bracket/internal/logging"
	"bracket/internal/orders"
	"bracket/internal/services"
)

// RetrySelector chooses which jobs a batch retry targets. Exactly one field
// must be set.
type RetrySelector struct {
	JobID     *int64
	ListingID *int64
	All       bool
}

// RetryFailure reports one job that could not be resubmitted.
type RetryFailure struct {
	JobID int64
	Err   string
}

// RetryResult aggregates a batch retry. The batch continues past individual
// failures rather than aborting.
type RetryResult struct {
	Retried []int64
	Failed  []RetryFailure
}

// MarkForRetry flags a failed job for later resubmission without contacting
// the processor. Only failed jobs can be flagged; pending_retry jobs are then
// picked up by Retry and bulk retry selection.
func (m *Manager) MarkForRetry(ctx context.Context, jobID int64, actor string) (*orders.ProcessingJob, error) {
	defer m.lockJob(jobID)()

	job, err := m.loadJob(ctx, "mark retry", jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != orders.JobFailed {
		return nil, services.Wrap(services.ErrConflict, "workflow", "mark retry",
			fmt.Sprintf("job %d is %s; marking for retry requires failed", job.ID, job.Status), nil)
	}

	previous := job.Status
	job.Status = orders.JobPendingRetry
	event := orders.NewEvent(job.ListingID, orders.EventJobStatusChanged, string(previous), string(orders.JobPendingRetry), actor, "")
	if err := m.store.UpdateJob(ctx, job, previous, event); err != nil {
		return nil, err
	}

	m.logger.Info("job marked for retry",
		logging.Int64(logging.FieldListingID, job.ListingID),
		logging.Int64(logging.FieldJobID, job.ID),
		logging.String(logging.FieldActor, event.Actor),
	)
	return job, nil
}

// Retry resubmits one failed job. It rebuilds the input set from the
// listing's current eligible assets, so media added since the original
// submission is picked up. Jobs outside {failed, pending_retry} are rejected
// as a conflict, never silently restarted.
func (m *Manager) Retry(ctx context.Context, jobID int64, actor string) (*orders.ProcessingJob, error) {
	defer m.lockJob(jobID)()
	return m.retryLocked(ctx, jobID, actor)
}

func (m *Manager) retryLocked(ctx context.Context, jobID int64, actor string) (*orders.ProcessingJob, error) {
	job, err := m.loadJob(ctx, "retry", jobID)
	if err != nil {
		return nil, err
	}
	if !job.Status.CanRetry() {
		return nil, services.Wrap(services.ErrConflict, "workflow", "retry",
			fmt.Sprintf("job %d is %s; retry requires failed or pending_retry", job.ID, job.Status), nil)
	}
	if max := m.cfg.Workflow.MaxRetries; max > 0 && job.RetryCount >= max {
		return nil, services.Wrap(services.ErrConflict, "workflow", "retry",
			fmt.Sprintf("job %d exhausted %d retries", job.ID, max), nil)
	}

	listing, err := m.store.GetListing(ctx, job.ListingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, services.Wrap(services.ErrNotFound, "workflow", "retry", fmt.Sprintf("listing %d", job.ListingID), nil)
	}

	assets, err := m.store.EligibleAssets(ctx, job.ListingID)
	if err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		return nil, services.Wrap(services.ErrValidation, "workflow", "retry",
			fmt.Sprintf("listing %d has no eligible media assets", job.ListingID), nil)
	}
	refs := make([]string, 0, len(assets))
	assetIDs := make([]int64, 0, len(assets))
	for _, asset := range assets {
		refs = append(refs, asset.StoragePath)
		assetIDs = append(assetIDs, asset.ID)
	}

	result, err := m.client.CreateJob(ctx, job.ListingID, refs, listing.IsRush)
	if err != nil {
		// The job keeps its failed/pending_retry state for a later attempt.
		return nil, err
	}

	previous := job.Status
	superseded := job.ExternalJobID
	now := time.Now().UTC()
	job.ExternalJobID = result.ExternalJobID
	job.Status = orders.JobProcessing
	job.InputRefs = refs
	job.OutputRef = ""
	job.MetricsJSON = ""
	job.ErrorMessage = ""
	job.RetryCount++
	job.StartedAt = &now

	event := orders.NewEvent(job.ListingID, orders.EventJobRetried, string(previous), string(orders.JobProcessing), actor,
		fmt.Sprintf("superseded remote job %s", superseded))
	if err := m.store.UpdateJob(ctx, job, previous, event); err != nil {
		return nil, err
	}
	if err := m.store.SetAssetsQCStatus(ctx, assetIDs, orders.AssetQCProcessing); err != nil {
		m.logger.Warn("asset status update failed after retry",
			logging.Int64(logging.FieldJobID, job.ID), logging.Error(err))
	}

	m.logger.Info("job retried",
		logging.Int64(logging.FieldListingID, job.ListingID),
		logging.Int64(logging.FieldJobID, job.ID),
		logging.String(logging.FieldExternalJobID, job.ExternalJobID),
		logging.String("superseded_external_job_id", superseded),
		logging.Int("retry_count", job.RetryCount),
		logging.String(logging.FieldActor, event.Actor),
	)
	return job, nil
}

// RetryBatch resubmits every job the selector matches, up to the configured
// bulk limit, and reports per-job outcomes.
func (m *Manager) RetryBatch(ctx context.Context, selector RetrySelector, actor string) (*RetryResult, error) {
	candidates, err := m.selectRetryCandidates(ctx, selector)
	if err != nil {
		return nil, err
	}

	result := &RetryResult{}
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := m.Retry(ctx, candidate, actor); err != nil {
			result.Failed = append(result.Failed, RetryFailure{JobID: candidate, Err: err.Error()})
			continue
		}
		result.Retried = append(result.Retried, candidate)
	}

	if len(result.Retried) > 0 || len(result.Failed) > 0 {
		if err := m.notifier.NotifyJobsRetried(ctx, len(result.Retried), len(result.Failed)); err != nil {
			m.logger.Warn("retry notification failed", logging.Error(err))
		}
	}
	return result, nil
}

func (m *Manager) selectRetryCandidates(ctx context.Context, selector RetrySelector) ([]int64, error) {
	set := 0
	if selector.JobID != nil {
		set++
	}
	if selector.ListingID != nil {
		set++
	}
	if selector.All {
		set++
	}
	if set != 1 {
		return nil, services.Wrap(services.ErrValidation, "workflow", "retry",
			"exactly one of job id, listing id, or all must be selected", nil)
	}

	if selector.JobID != nil {
		return []int64{*selector.JobID}, nil
	}

	listingID := int64(0)
	if selector.ListingID != nil {
		listingID = *selector.ListingID
	}
	jobs, err := m.store.RetryCandidates(ctx, listingID, m.cfg.Workflow.BulkRetryLimit)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(jobs))
	for _, job := range jobs {
		ids = append(ids, job.ID)
	}
	return ids, nil
}
