package qc

import (
	"sort"
	"time"

	"bracket/internal/orders"
)

// Priority levels surfaced to reviewers.
const (
	LevelHigh   = "high"
	LevelMedium = "medium"
	LevelLow    = "low"
)

const (
	rushBonus = 100
	inQCBonus = 50
)

// Entry is one listing's position in the review queue.
type Entry struct {
	ListingID     int64
	Address       string
	OpsStatus     orders.OpsStatus
	IsRush        bool
	HoursWaiting  int
	PriorityScore int
	PriorityLevel string
}

// Build computes the review queue for the given listings at the given
// instant. Listings not awaiting QC are skipped. The result is ordered by
// descending priority score; the sort is stable, so listings with equal
// scores keep the store's rush-first, longest-waiting-first fetch order.
func Build(listings []*orders.Listing, now time.Time) []Entry {
	entries := make([]Entry, 0, len(listings))
	for _, listing := range listings {
		if listing == nil || !listing.OpsStatus.AwaitsQC() {
			continue
		}
		entries = append(entries, score(listing, now))
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].PriorityScore > entries[j].PriorityScore
	})
	return entries
}

func score(listing *orders.Listing, now time.Time) Entry {
	hours := int(now.Sub(listing.UpdatedAt).Hours())
	if hours < 0 {
		hours = 0
	}

	total := hours
	if listing.IsRush {
		total += rushBonus
	}
	if listing.OpsStatus == orders.OpsInQC {
		total += inQCBonus
	}

	level := LevelLow
	switch {
	case listing.IsRush && hours > 2:
		level = LevelHigh
	case hours > 4:
		level = LevelMedium
	}

	return Entry{
		ListingID:     listing.ID,
		Address:       listing.Address,
		OpsStatus:     listing.OpsStatus,
		IsRush:        listing.IsRush,
		HoursWaiting:  hours,
		PriorityScore: total,
		PriorityLevel: level,
	}
}
