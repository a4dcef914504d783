package workflow

import (
	"context"
	"fmt"

	"bracket/internal/logging"
	"bracket/internal/orders"
	"bracket/internal/services"
)

// Cancel withdraws a job that has not started processing. The remote cancel
// is best-effort and cooperative; its failure is logged but never blocks the
// local transition, because local state is authoritative for downstream
// scheduling.
func (m *Manager) Cancel(ctx context.Context, jobID int64, actor string) (*orders.ProcessingJob, error) {
	defer m.lockJob(jobID)()

	job, err := m.loadJob(ctx, "cancel", jobID)
	if err != nil {
		return nil, err
	}
	if !job.Status.CanCancel() {
		return nil, services.Wrap(services.ErrConflict, "workflow", "cancel",
			fmt.Sprintf("job %d is %s; cancel requires pending or queued", job.ID, job.Status), nil)
	}

	if job.ExternalJobID != "" {
		if err := m.client.CancelJob(ctx, job.ExternalJobID); err != nil {
			m.logger.Warn("remote cancel failed",
				logging.Int64(logging.FieldJobID, job.ID),
				logging.String(logging.FieldExternalJobID, job.ExternalJobID),
				logging.Error(err),
			)
		}
	}

	previous := job.Status
	job.Status = orders.JobCancelled
	event := orders.NewEvent(job.ListingID, orders.EventJobCancelled, string(previous), string(orders.JobCancelled), actor, "")
	if err := m.store.UpdateJob(ctx, job, previous, event); err != nil {
		return nil, err
	}

	m.logger.Info("job cancelled",
		logging.Int64(logging.FieldListingID, job.ListingID),
		logging.Int64(logging.FieldJobID, job.ID),
		logging.String(logging.FieldActor, event.Actor),
	)
	return job, nil
}
