package testsupport

import (
	"context"
	"fmt"
	"testing"
	"time"

	"bracket/internal/config"
	"bracket/internal/orders"
)

// MustOpenStore opens an orders.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *orders.Store {
	t.Helper()

	store, err := orders.Open(cfg)
	if err != nil {
		t.Fatalf("orders.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedListing creates a listing for tests using the provided store.
func SeedListing(t testing.TB, store *orders.Store, status orders.OpsStatus, rush bool) *orders.Listing {
	t.Helper()

	listing, err := store.CreateListing(context.Background(), &orders.Listing{
		Address:        "1204 Juniper Lane",
		OpsStatus:      status,
		IsRush:         rush,
		PhotographerID: 7,
	})
	if err != nil {
		t.Fatalf("store.CreateListing: %v", err)
	}
	return listing
}

// SeedListingUpdatedAt creates a listing whose updated_at is pinned to the
// provided instant, for priority-scoring scenarios.
func SeedListingUpdatedAt(t testing.TB, store *orders.Store, status orders.OpsStatus, rush bool, updatedAt time.Time) *orders.Listing {
	t.Helper()

	listing, err := store.CreateListing(context.Background(), &orders.Listing{
		Address:   "88 Beacon Hill Road",
		OpsStatus: status,
		IsRush:    rush,
		UpdatedAt: updatedAt.UTC(),
	})
	if err != nil {
		t.Fatalf("store.CreateListing: %v", err)
	}
	return listing
}

// SeedAssets records n bracket-set assets for the listing and returns them.
func SeedAssets(t testing.TB, store *orders.Store, listingID int64, n int) []*orders.MediaAsset {
	t.Helper()

	assets := make([]*orders.MediaAsset, 0, n)
	for i := 0; i < n; i++ {
		asset, err := store.CreateAsset(context.Background(), &orders.MediaAsset{
			ListingID:   listingID,
			Kind:        "bracket_set",
			StoragePath: fmt.Sprintf("listings/%d/brackets/%03d.dng", listingID, i),
		})
		if err != nil {
			t.Fatalf("store.CreateAsset: %v", err)
		}
		assets = append(assets, asset)
	}
	return assets
}

// SeedJob inserts a processing job in the given status for tests.
func SeedJob(t testing.TB, store *orders.Store, listingID int64, status orders.JobStatus) *orders.ProcessingJob {
	t.Helper()

	job, err := store.CreateSubmission(context.Background(), &orders.ProcessingJob{
		ListingID:     listingID,
		ExternalJobID: fmt.Sprintf("ext-%d", time.Now().UnixNano()),
		Status:        status,
		InputRefs:     []string{"brackets/001.dng", "brackets/002.dng"},
	}, nil, nil)
	if err != nil {
		t.Fatalf("store.CreateSubmission: %v", err)
	}
	return job
}
