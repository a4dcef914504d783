package workflow

import (
	"context"
	"fmt"
	"time"

	"bracket/internal/logging"
	"bracket/internal/orders"
	"bracket/internal/services"
)

// Submit creates a fusion job for the given media assets and records it. On
// remote failure no job row is created and no asset state changes. Submit
// does not deduplicate: two concurrent submissions for the same listing
// create two remote jobs, and preventing that is the caller's responsibility.
func (m *Manager) Submit(ctx context.Context, listingID int64, assetIDs []int64, actor string) (*orders.ProcessingJob, error) {
	if len(assetIDs) == 0 {
		return nil, services.Wrap(services.ErrValidation, "workflow", "submit", "media asset ids must not be empty", nil)
	}

	listing, err := m.store.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, services.Wrap(services.ErrNotFound, "workflow", "submit", fmt.Sprintf("listing %d", listingID), nil)
	}

	refs, err := m.resolveRefs(ctx, listingID, assetIDs)
	if err != nil {
		return nil, err
	}

	result, err := m.client.CreateJob(ctx, listingID, refs, listing.IsRush)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	job := &orders.ProcessingJob{
		ListingID:     listingID,
		ExternalJobID: result.ExternalJobID,
		Status:        orders.JobProcessing,
		InputRefs:     refs,
		StartedAt:     &now,
	}
	event := orders.NewEvent(listingID, orders.EventJobSubmitted, "", string(orders.JobProcessing), actor,
		fmt.Sprintf("remote job %s", result.ExternalJobID))

	job, err = m.store.CreateSubmission(ctx, job, assetIDs, event)
	if err != nil {
		return nil, err
	}

	m.logger.Info("job submitted",
		logging.Int64(logging.FieldListingID, listingID),
		logging.Int64(logging.FieldJobID, job.ID),
		logging.String(logging.FieldExternalJobID, job.ExternalJobID),
		logging.Int("asset_count", len(assetIDs)),
		logging.String(logging.FieldActor, event.Actor),
	)
	if err := m.notifier.NotifyJobSubmitted(ctx, listingID, job.ExternalJobID); err != nil {
		m.logger.Warn("submit notification failed", logging.Int64(logging.FieldJobID, job.ID), logging.Error(err))
	}
	return job, nil
}

// resolveRefs maps asset ids to storage paths, rejecting ids that do not
// belong to the listing or that were rejected in QC.
func (m *Manager) resolveRefs(ctx context.Context, listingID int64, assetIDs []int64) ([]string, error) {
	assets, err := m.store.AssetsForListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*orders.MediaAsset, len(assets))
	for _, asset := range assets {
		byID[asset.ID] = asset
	}

	refs := make([]string, 0, len(assetIDs))
	for _, id := range assetIDs {
		asset, ok := byID[id]
		if !ok {
			return nil, services.Wrap(services.ErrValidation, "workflow", "submit",
				fmt.Sprintf("asset %d does not belong to listing %d", id, listingID), nil)
		}
		if asset.QCStatus == orders.AssetQCRejected {
			return nil, services.Wrap(services.ErrValidation, "workflow", "submit",
				fmt.Sprintf("asset %d was rejected in review", id), nil)
		}
		refs = append(refs, asset.StoragePath)
	}
	return refs, nil
}
