package orders_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"bracket/internal/orders"
	"bracket/internal/services"
	"bracket/internal/testsupport"
)

func TestCreateSubmissionPersistsJobAssetsAndEvent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	listing := testsupport.SeedListing(t, store, orders.OpsInEditing, false)
	assets := testsupport.SeedAssets(t, store, listing.ID, 3)
	assetIDs := make([]int64, 0, len(assets))
	refs := make([]string, 0, len(assets))
	for _, asset := range assets {
		assetIDs = append(assetIDs, asset.ID)
		refs = append(refs, asset.StoragePath)
	}

	now := time.Now().UTC()
	job, err := store.CreateSubmission(ctx, &orders.ProcessingJob{
		ListingID:     listing.ID,
		ExternalJobID: "ext-100",
		Status:        orders.JobProcessing,
		InputRefs:     refs,
		StartedAt:     &now,
	}, assetIDs, orders.NewEvent(listing.ID, orders.EventJobSubmitted, "", string(orders.JobProcessing), "operator", ""))
	if err != nil {
		t.Fatalf("CreateSubmission: %v", err)
	}
	if job.ID == 0 || job.Status != orders.JobProcessing || len(job.InputRefs) != 3 {
		t.Fatalf("unexpected job: %+v", job)
	}

	stored, err := store.AssetsForListing(ctx, listing.ID)
	if err != nil {
		t.Fatalf("AssetsForListing: %v", err)
	}
	for _, asset := range stored {
		if asset.QCStatus != orders.AssetQCProcessing {
			t.Fatalf("asset %d qc status = %s, want processing", asset.ID, asset.QCStatus)
		}
	}

	events, err := store.EventsForJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("EventsForJob: %v", err)
	}
	if len(events) != 1 || events[0].EventType != orders.EventJobSubmitted {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestUpdateJobDetectsStatusConflict(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	listing := testsupport.SeedListing(t, store, orders.OpsProcessing, false)
	job := testsupport.SeedJob(t, store, listing.ID, orders.JobProcessing)

	job.Status = orders.JobCompleted
	if err := store.UpdateJob(ctx, job, orders.JobQueued, nil); err == nil {
		t.Fatal("expected conflict when expected status does not match")
	} else if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected conflict marker, got %v", err)
	}

	fresh, err := store.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if fresh.Status != orders.JobProcessing {
		t.Fatalf("conflicting update must not change the row, got %s", fresh.Status)
	}
}

func TestUpdateJobMissingRowIsNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	job := &orders.ProcessingJob{ID: 9999, Status: orders.JobFailed}
	err := store.UpdateJob(context.Background(), job, orders.JobFailed, nil)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found marker, got %v", err)
	}
}

func TestTransitionListingCASAndEvent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	listing := testsupport.SeedListing(t, store, orders.OpsReadyForQC, true)
	listing.OpsStatus = orders.OpsInQC
	event := orders.NewEvent(listing.ID, orders.EventStatusChanged, string(orders.OpsReadyForQC), string(orders.OpsInQC), "qc-reviewer", "")

	if err := store.TransitionListing(ctx, listing, orders.OpsReadyForQC, event); err != nil {
		t.Fatalf("TransitionListing: %v", err)
	}

	fresh, err := store.GetListing(ctx, listing.ID)
	if err != nil {
		t.Fatalf("GetListing: %v", err)
	}
	if fresh.OpsStatus != orders.OpsInQC {
		t.Fatalf("ops status = %s, want in_qc", fresh.OpsStatus)
	}

	events, err := store.EventsForListing(ctx, listing.ID)
	if err != nil {
		t.Fatalf("EventsForListing: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected exactly one event, got %d", len(events))
	}

	// A second writer still expecting ready_for_qc must conflict and write nothing.
	stale := *fresh
	stale.OpsStatus = orders.OpsInQC
	err = store.TransitionListing(ctx, &stale, orders.OpsReadyForQC, orders.NewEvent(listing.ID, orders.EventStatusChanged, "", "", "other", ""))
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	events, err = store.EventsForListing(ctx, listing.ID)
	if err != nil {
		t.Fatalf("EventsForListing: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("rejected transition must not append events, got %d", len(events))
	}
}

func TestListingsAwaitingQCFetchOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	now := time.Now().UTC()
	older := testsupport.SeedListingUpdatedAt(t, store, orders.OpsReadyForQC, false, now.Add(-6*time.Hour))
	newer := testsupport.SeedListingUpdatedAt(t, store, orders.OpsInQC, false, now.Add(-1*time.Hour))
	rush := testsupport.SeedListingUpdatedAt(t, store, orders.OpsReadyForQC, true, now.Add(-10*time.Minute))
	testsupport.SeedListing(t, store, orders.OpsInEditing, false)

	listings, err := store.ListingsAwaitingQC(ctx)
	if err != nil {
		t.Fatalf("ListingsAwaitingQC: %v", err)
	}
	if len(listings) != 3 {
		t.Fatalf("expected 3 listings awaiting QC, got %d", len(listings))
	}
	got := []int64{listings[0].ID, listings[1].ID, listings[2].ID}
	want := []int64{rush.ID, older.ID, newer.ID}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("fetch order = %v, want %v", got, want)
		}
	}
}

func TestRetryCandidatesFiltersAndCaps(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	a := testsupport.SeedListing(t, store, orders.OpsProcessing, false)
	b := testsupport.SeedListing(t, store, orders.OpsProcessing, false)
	testsupport.SeedJob(t, store, a.ID, orders.JobFailed)
	testsupport.SeedJob(t, store, a.ID, orders.JobPendingRetry)
	testsupport.SeedJob(t, store, b.ID, orders.JobFailed)
	testsupport.SeedJob(t, store, b.ID, orders.JobCompleted)

	all, err := store.RetryCandidates(ctx, 0, 0)
	if err != nil {
		t.Fatalf("RetryCandidates: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(all))
	}

	scoped, err := store.RetryCandidates(ctx, a.ID, 0)
	if err != nil {
		t.Fatalf("RetryCandidates listing: %v", err)
	}
	if len(scoped) != 2 {
		t.Fatalf("expected 2 candidates for listing, got %d", len(scoped))
	}

	capped, err := store.RetryCandidates(ctx, 0, 2)
	if err != nil {
		t.Fatalf("RetryCandidates capped: %v", err)
	}
	if len(capped) != 2 {
		t.Fatalf("expected cap of 2, got %d", len(capped))
	}
}

func TestEligibleAssetsSkipRejected(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	listing := testsupport.SeedListing(t, store, orders.OpsInEditing, false)
	assets := testsupport.SeedAssets(t, store, listing.ID, 3)
	if err := store.SetAssetsQCStatus(ctx, []int64{assets[1].ID}, orders.AssetQCRejected); err != nil {
		t.Fatalf("SetAssetsQCStatus: %v", err)
	}

	eligible, err := store.EligibleAssets(ctx, listing.ID)
	if err != nil {
		t.Fatalf("EligibleAssets: %v", err)
	}
	if len(eligible) != 2 {
		t.Fatalf("expected 2 eligible assets, got %d", len(eligible))
	}
	for _, asset := range eligible {
		if asset.ID == assets[1].ID {
			t.Fatal("rejected asset must not be eligible")
		}
	}
}

func TestStatsAndHealth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	listing := testsupport.SeedListing(t, store, orders.OpsReadyForQC, false)
	testsupport.SeedJob(t, store, listing.ID, orders.JobProcessing)
	testsupport.SeedJob(t, store, listing.ID, orders.JobFailed)
	testsupport.SeedJob(t, store, listing.ID, orders.JobCompleted)

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats[orders.JobProcessing] != 1 || stats[orders.JobFailed] != 1 || stats[orders.JobCompleted] != 1 {
		t.Fatalf("unexpected stats: %v", stats)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health.Total != 3 || health.Active != 1 || health.Failed != 1 || health.Completed != 1 {
		t.Fatalf("unexpected health: %+v", health)
	}
	if health.AwaitingQC != 1 {
		t.Fatalf("awaiting qc = %d, want 1", health.AwaitingQC)
	}
}
