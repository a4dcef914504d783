package workflow

import (
	"context"
	"errors"
	"time"

	"bracket/internal/logging"
	"bracket/internal/orders"
	"bracket/internal/processor"
	"bracket/internal/services"
)

// Poll reconciles one job with the remote fusion service. Jobs outside
// {queued, processing} are left untouched, so a completion report arriving
// after a local cancel is a no-op. Transient upstream failures are swallowed:
// local state is kept and the caller is expected to poll again later.
func (m *Manager) Poll(ctx context.Context, jobID int64, actor string) (*orders.ProcessingJob, error) {
	defer m.lockJob(jobID)()

	job, err := m.loadJob(ctx, "poll", jobID)
	if err != nil {
		return nil, err
	}
	if !job.Status.IsActive() {
		return job, nil
	}

	result, err := m.client.GetStatus(ctx, job.ExternalJobID)
	if err != nil {
		if errors.Is(err, services.ErrTransient) {
			m.logger.Warn("poll deferred on transient upstream failure",
				logging.Int64(logging.FieldJobID, job.ID),
				logging.String(logging.FieldExternalJobID, job.ExternalJobID),
				logging.Error(err),
			)
			return job, nil
		}
		return nil, err
	}

	previous := job.Status
	now := time.Now().UTC()
	switch result.Status {
	case processor.RemoteQueued:
		job.Status = orders.JobQueued
		if job.QueuedAt == nil {
			job.QueuedAt = &now
		}
	case processor.RemoteProcessing:
		job.Status = orders.JobProcessing
	case processor.RemoteCompleted:
		job.SetCompleted(result.OutputRef, string(result.Metrics), now)
	case processor.RemoteFailed:
		job.SetFailed(result.ErrorMessage, now)
	default:
		return nil, services.Wrap(services.ErrUpstream, "workflow", "poll",
			"remote reported unknown status "+string(result.Status), nil)
	}

	if job.Status == previous {
		return job, nil
	}

	event := orders.NewEvent(job.ListingID, orders.EventJobStatusChanged, string(previous), string(job.Status), actor, "")
	if err := m.store.UpdateJob(ctx, job, previous, event); err != nil {
		return nil, err
	}

	m.logger.Info("job status reconciled",
		logging.Int64(logging.FieldListingID, job.ListingID),
		logging.Int64(logging.FieldJobID, job.ID),
		logging.String("from", string(previous)),
		logging.String("to", string(job.Status)),
	)

	switch job.Status {
	case orders.JobCompleted:
		if err := m.notifier.NotifyJobCompleted(ctx, job.ListingID, job.OutputRef); err != nil {
			m.logger.Warn("completion notification failed", logging.Int64(logging.FieldJobID, job.ID), logging.Error(err))
		}
	case orders.JobFailed:
		if err := m.notifier.NotifyJobFailed(ctx, job.ListingID, job.ErrorMessage); err != nil {
			m.logger.Warn("failure notification failed", logging.Int64(logging.FieldJobID, job.ID), logging.Error(err))
		}
	}
	return job, nil
}
