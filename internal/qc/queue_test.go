package qc

import (
	"testing"
	"time"

	"bracket/internal/orders"
)

func listing(id int64, status orders.OpsStatus, rush bool, waiting time.Duration, now time.Time) *orders.Listing {
	return &orders.Listing{
		ID:        id,
		Address:   "1 Test Ln",
		OpsStatus: status,
		IsRush:    rush,
		UpdatedAt: now.Add(-waiting),
	}
}

func TestBuildScoresAndOrders(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	input := []*orders.Listing{
		listing(1, orders.OpsReadyForQC, true, 3*time.Hour, now),
		listing(2, orders.OpsReadyForQC, false, 5*time.Hour, now),
		listing(3, orders.OpsInQC, false, time.Hour, now),
	}

	queue := Build(input, now)
	if len(queue) != 3 {
		t.Fatalf("queue length = %d, want 3", len(queue))
	}

	wantOrder := []int64{1, 3, 2}
	wantScores := map[int64]int{1: 103, 2: 5, 3: 51}
	wantLevels := map[int64]string{1: LevelHigh, 2: LevelMedium, 3: LevelLow}
	for i, entry := range queue {
		if entry.ListingID != wantOrder[i] {
			t.Errorf("position %d = listing %d, want %d", i, entry.ListingID, wantOrder[i])
		}
		if entry.PriorityScore != wantScores[entry.ListingID] {
			t.Errorf("listing %d score = %d, want %d", entry.ListingID, entry.PriorityScore, wantScores[entry.ListingID])
		}
		if entry.PriorityLevel != wantLevels[entry.ListingID] {
			t.Errorf("listing %d level = %q, want %q", entry.ListingID, entry.PriorityLevel, wantLevels[entry.ListingID])
		}
	}
}

func TestBuildSkipsListingsOutsideQC(t *testing.T) {
	now := time.Now()
	input := []*orders.Listing{
		listing(1, orders.OpsInEditing, true, 10*time.Hour, now),
		listing(2, orders.OpsDelivered, false, 10*time.Hour, now),
		listing(3, orders.OpsReadyForQC, false, time.Hour, now),
		nil,
	}

	queue := Build(input, now)
	if len(queue) != 1 {
		t.Fatalf("queue length = %d, want 1", len(queue))
	}
	if queue[0].ListingID != 3 {
		t.Errorf("listing = %d, want 3", queue[0].ListingID)
	}
}

func TestBuildStableForEqualScores(t *testing.T) {
	now := time.Now()
	// Both rush, same waiting time: the store's fetch order must survive.
	input := []*orders.Listing{
		listing(10, orders.OpsReadyForQC, true, 3*time.Hour, now),
		listing(11, orders.OpsReadyForQC, true, 3*time.Hour, now),
	}

	queue := Build(input, now)
	if len(queue) != 2 {
		t.Fatalf("queue length = %d, want 2", len(queue))
	}
	if queue[0].ListingID != 10 || queue[1].ListingID != 11 {
		t.Errorf("order = [%d, %d], want [10, 11]", queue[0].ListingID, queue[1].ListingID)
	}
}

func TestBuildClampsFutureTimestamps(t *testing.T) {
	now := time.Now()
	input := []*orders.Listing{
		listing(1, orders.OpsReadyForQC, false, -time.Hour, now),
	}

	queue := Build(input, now)
	if len(queue) != 1 {
		t.Fatalf("queue length = %d, want 1", len(queue))
	}
	if queue[0].HoursWaiting != 0 {
		t.Errorf("HoursWaiting = %d, want 0", queue[0].HoursWaiting)
	}
	if queue[0].PriorityScore != 0 {
		t.Errorf("PriorityScore = %d, want 0", queue[0].PriorityScore)
	}
}
