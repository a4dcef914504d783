package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"bracket/internal/config"
	"bracket/internal/logging"
	"bracket/internal/logs"
	"bracket/internal/notifications"
	"bracket/internal/orders"
	"bracket/internal/pipeline"
	"bracket/internal/qc"
	"bracket/internal/workflow"
)

// Daemon composes the order-processing services and enforces single-instance
// execution.
type Daemon struct {
	cfg      *config.Config
	store    *orders.Store
	manager  *workflow.Manager
	engine   *pipeline.Engine
	notifier notifications.Service
	logger   *slog.Logger

	lockPath  string
	lock      *flock.Flock
	startedAt time.Time
}

// Status represents daemon runtime information.
type Status struct {
	Running    bool
	PID        int
	StartedAt  time.Time
	DBPath     string
	LockPath   string
	SocketPath string
	Health     orders.HealthSummary
}

// New builds a daemon around the given components. Call Start to acquire the
// instance lock before serving.
func New(cfg *config.Config, store *orders.Store, manager *workflow.Manager, engine *pipeline.Engine, notifier notifications.Service, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if store == nil || manager == nil || engine == nil {
		return nil, errors.New("daemon requires store, manager, and engine")
	}
	if notifier == nil {
		notifier = notifications.Nop()
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "bracketd.lock")
	return &Daemon{
		cfg:      cfg,
		store:    store,
		manager:  manager,
		engine:   engine,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the single-instance lock. It fails when another bracketd
// already holds it.
func (d *Daemon) Start() error {
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another instance holds %s", d.lockPath)
	}
	d.startedAt = time.Now().UTC()
	d.logger.Info("daemon started",
		logging.String("db_path", d.store.Path()),
		logging.String("lock_path", d.lockPath),
	)
	return nil
}

// Close releases the instance lock.
func (d *Daemon) Close() {
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("release lock failed", logging.Error(err))
	}
	_ = os.Remove(d.lockPath)
}

// Status reports runtime information including aggregated order health.
func (d *Daemon) Status(ctx context.Context) (Status, error) {
	health, err := d.store.Health(ctx)
	if err != nil {
		return Status{}, err
	}
	return Status{
		Running:    true,
		PID:        os.Getpid(),
		StartedAt:  d.startedAt,
		DBPath:     d.store.Path(),
		LockPath:   d.lockPath,
		SocketPath: d.cfg.Paths.SocketPath,
		Health:     health,
	}, nil
}

// Submit creates a fusion job for a listing's assets.
func (d *Daemon) Submit(ctx context.Context, listingID int64, assetIDs []int64, actor string) (*orders.ProcessingJob, error) {
	return d.manager.Submit(ctx, listingID, assetIDs, actor)
}

// Poll reconciles one job with the remote processor.
func (d *Daemon) Poll(ctx context.Context, jobID int64, actor string) (*orders.ProcessingJob, error) {
	return d.manager.Poll(ctx, jobID, actor)
}

// Retry resubmits one failed job.
func (d *Daemon) Retry(ctx context.Context, jobID int64, actor string) (*orders.ProcessingJob, error) {
	return d.manager.Retry(ctx, jobID, actor)
}

// RetryBatch resubmits every job the selector matches.
func (d *Daemon) MarkForRetry(ctx context.Context, jobID int64, actor string) (*orders.ProcessingJob, error) {
	return d.manager.MarkForRetry(ctx, jobID, actor)
}

func (d *Daemon) RetryBatch(ctx context.Context, selector workflow.RetrySelector, actor string) (*workflow.RetryResult, error) {
	return d.manager.RetryBatch(ctx, selector, actor)
}

// Cancel withdraws a job that has not started processing.
func (d *Daemon) Cancel(ctx context.Context, jobID int64, actor string) (*orders.ProcessingJob, error) {
	return d.manager.Cancel(ctx, jobID, actor)
}

// Transition moves a listing through the production pipeline.
func (d *Daemon) Transition(ctx context.Context, req pipeline.Request) (*orders.Listing, error) {
	return d.engine.Transition(ctx, req)
}

// GetJob fetches one job. Returns nil when absent.
func (d *Daemon) GetJob(ctx context.Context, id int64) (*orders.ProcessingJob, error) {
	return d.store.GetJob(ctx, id)
}

// ListJobs returns jobs filtered by status; no filter returns everything.
func (d *Daemon) ListJobs(ctx context.Context, statuses []orders.JobStatus) ([]*orders.ProcessingJob, error) {
	return d.store.JobsByStatus(ctx, statuses...)
}

// JobsForListing returns a listing's jobs, newest first.
func (d *Daemon) JobsForListing(ctx context.Context, listingID int64) ([]*orders.ProcessingJob, error) {
	return d.store.JobsForListing(ctx, listingID)
}

// GetListing fetches one listing. Returns nil when absent.
func (d *Daemon) GetListing(ctx context.Context, id int64) (*orders.Listing, error) {
	return d.store.GetListing(ctx, id)
}

// QCQueue recomputes the review queue against the current clock.
func (d *Daemon) QCQueue(ctx context.Context) ([]qc.Entry, error) {
	listings, err := d.store.ListingsAwaitingQC(ctx)
	if err != nil {
		return nil, err
	}
	return qc.Build(listings, time.Now().UTC()), nil
}

// EventsForListing returns a listing's audit trail, oldest first.
func (d *Daemon) EventsForListing(ctx context.Context, listingID int64) ([]*orders.JobEvent, error) {
	return d.store.EventsForListing(ctx, listingID)
}

// EventsForJob returns a job's audit trail, oldest first.
func (d *Daemon) EventsForJob(ctx context.Context, jobID int64) ([]*orders.JobEvent, error) {
	return d.store.EventsForJob(ctx, jobID)
}

// TestNotification sends a test message through the configured notifier.
// The boolean reports whether a notifier is configured at all.
func (d *Daemon) TestNotification(ctx context.Context) (bool, error) {
	if !d.notifier.Enabled() {
		return false, nil
	}
	return true, d.notifier.TestNotification(ctx)
}

// TailLogs reads from the daemon log file.
func (d *Daemon) TailLogs(ctx context.Context, opts logs.TailOptions) (logs.TailResult, error) {
	return logs.Tail(ctx, logs.Path(d.cfg.Paths.LogDir), opts)
}
