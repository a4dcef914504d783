package ipc_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"bracket/internal/daemon"
	"bracket/internal/ipc"
	"bracket/internal/logging"
	"bracket/internal/logs"
	"bracket/internal/orders"
	"bracket/internal/pipeline"
	"bracket/internal/processor"
	"bracket/internal/testsupport"
	"bracket/internal/workflow"
)

type scriptedProcessor struct {
	nextID int
}

func (p *scriptedProcessor) CreateJob(ctx context.Context, listingID int64, mediaRefs []string, rush bool) (*processor.CreateJobResult, error) {
	p.nextID++
	return &processor.CreateJobResult{ExternalJobID: fmt.Sprintf("fj-%d", p.nextID), Status: processor.RemoteQueued}, nil
}

func (p *scriptedProcessor) GetStatus(ctx context.Context, externalJobID string) (*processor.JobStatusResult, error) {
	return &processor.JobStatusResult{Status: processor.RemoteProcessing}, nil
}

func (p *scriptedProcessor) CancelJob(ctx context.Context, externalJobID string) error { return nil }

func TestIPCServerClient(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()
	mgr := workflow.NewManager(cfg, store, &scriptedProcessor{}, nil, logger)
	engine := pipeline.New(store, nil, logger)
	d, err := daemon.New(cfg, store, mgr, engine, nil, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	srv, err := ipc.NewServer(ctx, cfg.Paths.SocketPath, d, logger)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(func() {
		srv.Close()
	})

	time.Sleep(50 * time.Millisecond)

	client, err := ipc.Dial(cfg.Paths.SocketPath)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
	})

	if _, err := client.Ping(); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	listing := testsupport.SeedListing(t, store, orders.OpsProcessing, true)
	assets := testsupport.SeedAssets(t, store, listing.ID, 2)

	submitResp, err := client.Submit(ipc.SubmitRequest{
		ListingID: listing.ID,
		AssetIDs:  []int64{assets[0].ID, assets[1].ID},
		Actor:     "coordinator",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if submitResp.Job.Status != string(orders.JobProcessing) {
		t.Errorf("submitted job status = %q, want processing", submitResp.Job.Status)
	}

	pollResp, err := client.Poll(ipc.PollRequest{JobID: submitResp.Job.ID, Actor: "poller"})
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if pollResp.Job.ID != submitResp.Job.ID {
		t.Errorf("polled job id = %d, want %d", pollResp.Job.ID, submitResp.Job.ID)
	}

	listResp, err := client.JobList(ipc.JobListRequest{ListingID: listing.ID})
	if err != nil {
		t.Fatalf("JobList: %v", err)
	}
	if len(listResp.Jobs) != 1 {
		t.Errorf("job count = %d, want 1", len(listResp.Jobs))
	}

	describeResp, err := client.JobDescribe(submitResp.Job.ID)
	if err != nil {
		t.Fatalf("JobDescribe: %v", err)
	}
	if len(describeResp.Events) == 0 {
		t.Error("expected audit events on the submitted job")
	}

	// A bad transition surfaces as an RPC error naming both states.
	qcListing := testsupport.SeedListing(t, store, orders.OpsReadyForQC, false)
	if _, err := client.Transition(ipc.TransitionRequest{
		ListingID: qcListing.ID,
		Target:    string(orders.OpsDelivered),
		Actor:     "reviewer",
	}); err == nil || !strings.Contains(err.Error(), "invalid transition") {
		t.Errorf("Transition error = %v, want invalid transition", err)
	}
	transResp, err := client.Transition(ipc.TransitionRequest{
		ListingID: qcListing.ID,
		Target:    string(orders.OpsInQC),
		Actor:     "reviewer",
	})
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if transResp.Listing.OpsStatus != string(orders.OpsInQC) {
		t.Errorf("listing status = %q, want in_qc", transResp.Listing.OpsStatus)
	}

	qcResp, err := client.QCQueue()
	if err != nil {
		t.Fatalf("QCQueue: %v", err)
	}
	if len(qcResp.Entries) != 1 || qcResp.Entries[0].ListingID != qcListing.ID {
		t.Errorf("qc queue = %+v, want one entry for listing %d", qcResp.Entries, qcListing.ID)
	}

	eventsResp, err := client.Events(qcListing.ID)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(eventsResp.Events) != 1 {
		t.Errorf("event count = %d, want 1", len(eventsResp.Events))
	}

	statusResp, err := client.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if statusResp.Health.Total != 1 {
		t.Errorf("health total = %d, want 1", statusResp.Health.Total)
	}
	notifyResp, err := client.TestNotification()
	if err != nil {
		t.Fatalf("TestNotification: %v", err)
	}
	if notifyResp.Sent {
		t.Error("TestNotification reported sent with no notifier configured")
	}

	if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatalf("create log dir: %v", err)
	}
	logPath := logs.Path(cfg.Paths.LogDir)
	if err := os.WriteFile(logPath, []byte("line one\nline two\n"), 0o644); err != nil {
		t.Fatalf("write log file: %v", err)
	}
	tailResp, err := client.LogTail(ipc.LogTailRequest{Offset: -1, Limit: 1})
	if err != nil {
		t.Fatalf("LogTail: %v", err)
	}
	if len(tailResp.Lines) != 1 || tailResp.Lines[0] != "line two" {
		t.Errorf("LogTail lines = %v, want [line two]", tailResp.Lines)
	}
}
