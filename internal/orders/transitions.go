package orders

import "strings"

// OpsStatus represents the production-pipeline state of a listing's media order.
type OpsStatus string

const (
	OpsPending         OpsStatus = "pending"
	OpsScheduled       OpsStatus = "scheduled"
	OpsInProgress      OpsStatus = "in_progress"
	OpsStaged          OpsStatus = "staged"
	OpsAwaitingEditing OpsStatus = "awaiting_editing"
	OpsInEditing       OpsStatus = "in_editing"
	OpsProcessing      OpsStatus = "processing"
	OpsReadyForQC      OpsStatus = "ready_for_qc"
	OpsInQC            OpsStatus = "in_qc"
	OpsDelivered       OpsStatus = "delivered"
	OpsCancelled       OpsStatus = "cancelled"
	OpsOnHold          OpsStatus = "on_hold"
)

var allOpsStatuses = []OpsStatus{
	OpsPending,
	OpsScheduled,
	OpsInProgress,
	OpsStaged,
	OpsAwaitingEditing,
	OpsInEditing,
	OpsProcessing,
	OpsReadyForQC,
	OpsInQC,
	OpsDelivered,
	OpsCancelled,
	OpsOnHold,
}

var opsStatusSet = func() map[OpsStatus]struct{} {
	set := make(map[OpsStatus]struct{}, len(allOpsStatuses))
	for _, status := range allOpsStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// opsTransitions is the single adjacency table defining, for each state, the
// states a non-privileged actor may move a listing into next. Delivered and
// cancelled have empty outgoing sets; a privileged actor bypasses this table
// entirely.
var opsTransitions = map[OpsStatus][]OpsStatus{
	OpsPending:         {OpsScheduled, OpsOnHold, OpsCancelled},
	OpsScheduled:       {OpsInProgress, OpsOnHold, OpsCancelled},
	OpsInProgress:      {OpsStaged, OpsOnHold, OpsCancelled},
	OpsStaged:          {OpsAwaitingEditing, OpsOnHold, OpsCancelled},
	OpsAwaitingEditing: {OpsInEditing, OpsOnHold, OpsCancelled},
	OpsInEditing:       {OpsProcessing, OpsReadyForQC, OpsOnHold, OpsCancelled},
	OpsProcessing:      {OpsInEditing, OpsReadyForQC, OpsOnHold, OpsCancelled},
	OpsReadyForQC:      {OpsInQC},
	OpsInQC:            {OpsDelivered, OpsInEditing},
	OpsDelivered:       {},
	OpsCancelled:       {},
	OpsOnHold:          {OpsScheduled, OpsInProgress, OpsStaged, OpsAwaitingEditing, OpsInEditing, OpsCancelled},
}

// AllOpsStatuses returns the ordered list of known ops statuses.
func AllOpsStatuses() []OpsStatus {
	cp := make([]OpsStatus, len(allOpsStatuses))
	copy(cp, allOpsStatuses)
	return cp
}

// ParseOpsStatus converts a string into a known OpsStatus.
func ParseOpsStatus(value string) (OpsStatus, bool) {
	normalized := OpsStatus(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := opsStatusSet[normalized]
	return normalized, ok
}

// CanTransition reports whether a non-privileged actor may move a listing
// from one status to another.
func CanTransition(from, to OpsStatus) bool {
	for _, candidate := range opsTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// AllowedNext returns the statuses reachable from the given status by a
// non-privileged actor.
func AllowedNext(from OpsStatus) []OpsStatus {
	next := opsTransitions[from]
	cp := make([]OpsStatus, len(next))
	copy(cp, next)
	return cp
}

// IsTerminal reports whether the status is absorbing under non-privileged
// transition rules.
func (s OpsStatus) IsTerminal() bool {
	return len(opsTransitions[s]) == 0 && s != ""
}

// AwaitsQC reports whether the listing belongs in the QC review queue.
func (s OpsStatus) AwaitsQC() bool {
	return s == OpsReadyForQC || s == OpsInQC
}
