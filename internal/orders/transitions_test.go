package orders_test

import (
	"testing"

	"bracket/internal/orders"
)

func TestParseOpsStatus(t *testing.T) {
	status, ok := orders.ParseOpsStatus("  Ready_For_QC ")
	if !ok || status != orders.OpsReadyForQC {
		t.Fatalf("ParseOpsStatus = %q, %v", status, ok)
	}
	if _, ok := orders.ParseOpsStatus("shipped"); ok {
		t.Fatal("expected unknown status to fail parsing")
	}
	if _, ok := orders.ParseOpsStatus(""); ok {
		t.Fatal("expected empty status to fail parsing")
	}
}

func TestCanTransitionQCPath(t *testing.T) {
	if !orders.CanTransition(orders.OpsReadyForQC, orders.OpsInQC) {
		t.Fatal("ready_for_qc must allow in_qc")
	}
	if !orders.CanTransition(orders.OpsInQC, orders.OpsDelivered) {
		t.Fatal("in_qc must allow delivered")
	}
	if !orders.CanTransition(orders.OpsInQC, orders.OpsInEditing) {
		t.Fatal("QC must be able to send work back for edits")
	}
	if orders.CanTransition(orders.OpsReadyForQC, orders.OpsDelivered) {
		t.Fatal("ready_for_qc must not skip QC review")
	}
}

func TestTerminalOpsStatusesHaveNoExits(t *testing.T) {
	for _, terminal := range []orders.OpsStatus{orders.OpsDelivered, orders.OpsCancelled} {
		if !terminal.IsTerminal() {
			t.Fatalf("%s should be terminal", terminal)
		}
		for _, target := range orders.AllOpsStatuses() {
			if orders.CanTransition(terminal, target) {
				t.Fatalf("%s must not transition to %s", terminal, target)
			}
		}
	}
}

func TestOnHoldResumes(t *testing.T) {
	next := orders.AllowedNext(orders.OpsOnHold)
	if len(next) < 3 {
		t.Fatalf("on_hold should resume into several states, got %v", next)
	}
	if !orders.CanTransition(orders.OpsOnHold, orders.OpsInEditing) {
		t.Fatal("on_hold must resume into in_editing")
	}
}

func TestJobStatusPredicates(t *testing.T) {
	if !orders.JobCompleted.IsTerminal() || !orders.JobCancelled.IsTerminal() {
		t.Fatal("completed and cancelled are absorbing")
	}
	if orders.JobFailed.IsTerminal() {
		t.Fatal("failed is not absorbing")
	}
	if !orders.JobFailed.CanRetry() || !orders.JobPendingRetry.CanRetry() {
		t.Fatal("failed and pending_retry are retryable")
	}
	if orders.JobProcessing.CanRetry() {
		t.Fatal("processing jobs must not be retryable")
	}
	if !orders.JobPending.CanCancel() || !orders.JobQueued.CanCancel() {
		t.Fatal("pending and queued are cancellable")
	}
	if orders.JobProcessing.CanCancel() {
		t.Fatal("processing jobs are not cancellable")
	}
}
