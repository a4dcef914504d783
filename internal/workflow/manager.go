package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"bracket/internal/config"
	"bracket/internal/logging"
	"bracket/internal/notifications"
	"bracket/internal/orders"
	"bracket/internal/processor"
	"bracket/internal/services"
)

// ProcessorClient is the slice of the fusion service client the manager uses.
type ProcessorClient interface {
	CreateJob(ctx context.Context, listingID int64, mediaRefs []string, rush bool) (*processor.CreateJobResult, error)
	GetStatus(ctx context.Context, externalJobID string) (*processor.JobStatusResult, error)
	CancelJob(ctx context.Context, externalJobID string) error
}

// Manager drives processing jobs through their lifecycle.
type Manager struct {
	cfg      *config.Config
	store    *orders.Store
	client   ProcessorClient
	notifier notifications.Service
	logger   *slog.Logger

	mu       sync.Mutex
	jobLocks map[int64]*sync.Mutex
}

// NewManager constructs a workflow manager. A nil notifier disables
// notifications and a nil logger disables logging.
func NewManager(cfg *config.Config, store *orders.Store, client ProcessorClient, notifier notifications.Service, logger *slog.Logger) *Manager {
	if notifier == nil {
		notifier = notifications.Nop()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		cfg:      cfg,
		store:    store,
		client:   client,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "workflow"),
		jobLocks: make(map[int64]*sync.Mutex),
	}
}

// lockJob serializes operations on a single job id. Operations across
// different jobs proceed concurrently.
func (m *Manager) lockJob(id int64) func() {
	m.mu.Lock()
	lock, ok := m.jobLocks[id]
	if !ok {
		lock = &sync.Mutex{}
		m.jobLocks[id] = lock
	}
	m.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func (m *Manager) loadJob(ctx context.Context, operation string, jobID int64) (*orders.ProcessingJob, error) {
	job, err := m.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, services.Wrap(services.ErrNotFound, "workflow", operation, fmt.Sprintf("job %d", jobID), nil)
	}
	return job, nil
}
