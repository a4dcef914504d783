package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"bracket/internal/api"
	"bracket/internal/daemon"
	"bracket/internal/logging"
	"bracket/internal/logs"
	"bracket/internal/orders"
	"bracket/internal/pipeline"
	"bracket/internal/workflow"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logging.NewComponentLogger(logger, "ipc"), ctx: serverCtx}
	if err := rpcServer.RegisterName("Bracket", srv); err != nil {
		cancel()
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	return &Server{
		path:      path,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed", logging.Error(err))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket", logging.String("socket", s.path), logging.Error(err))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) Ping(_ PingRequest, resp *PingResponse) error {
	resp.PID = os.Getpid()
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status, err := s.daemon.Status(s.ctx)
	if err != nil {
		return err
	}
	resp.Running = status.Running
	resp.PID = status.PID
	if !status.StartedAt.IsZero() {
		resp.StartedAt = status.StartedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	resp.DBPath = status.DBPath
	resp.LockPath = status.LockPath
	resp.SocketPath = status.SocketPath
	resp.Health = api.FromHealth(status.Health)
	return nil
}

func (s *service) Submit(req SubmitRequest, resp *SubmitResponse) error {
	job, err := s.daemon.Submit(s.ctx, req.ListingID, req.AssetIDs, req.Actor)
	if err != nil {
		return err
	}
	resp.Job = api.FromJob(job)
	s.logger.Info("job submitted via IPC",
		logging.Int64(logging.FieldListingID, req.ListingID),
		logging.Int64(logging.FieldJobID, job.ID),
	)
	return nil
}

func (s *service) Poll(req PollRequest, resp *PollResponse) error {
	job, err := s.daemon.Poll(s.ctx, req.JobID, req.Actor)
	if err != nil {
		return err
	}
	resp.Job = api.FromJob(job)
	return nil
}

func (s *service) Retry(req RetryRequest, resp *RetryResponse) error {
	job, err := s.daemon.Retry(s.ctx, req.JobID, req.Actor)
	if err != nil {
		return err
	}
	resp.Job = api.FromJob(job)
	s.logger.Info("job retried via IPC", logging.Int64(logging.FieldJobID, req.JobID))
	return nil
}

func (s *service) MarkRetry(req MarkRetryRequest, resp *MarkRetryResponse) error {
	job, err := s.daemon.MarkForRetry(s.ctx, req.JobID, req.Actor)
	if err != nil {
		return err
	}
	resp.Job = api.FromJob(job)
	s.logger.Info("job marked for retry via IPC", logging.Int64(logging.FieldJobID, req.JobID))
	return nil
}

func (s *service) RetryBatch(req RetryBatchRequest, resp *RetryBatchResponse) error {
	result, err := s.daemon.RetryBatch(s.ctx, workflow.RetrySelector{
		JobID:     req.JobID,
		ListingID: req.ListingID,
		All:       req.All,
	}, req.Actor)
	if err != nil {
		return err
	}
	resp.Outcome = api.FromRetryResult(result)
	s.logger.Info("bulk retry via IPC",
		logging.Int("retried_count", len(resp.Outcome.Retried)),
		logging.Int("failed_count", len(resp.Outcome.Failed)),
	)
	return nil
}

func (s *service) Cancel(req CancelRequest, resp *CancelResponse) error {
	job, err := s.daemon.Cancel(s.ctx, req.JobID, req.Actor)
	if err != nil {
		return err
	}
	resp.Job = api.FromJob(job)
	s.logger.Info("job cancelled via IPC", logging.Int64(logging.FieldJobID, req.JobID))
	return nil
}

func (s *service) JobList(req JobListRequest, resp *JobListResponse) error {
	if req.ListingID > 0 {
		jobs, err := s.daemon.JobsForListing(s.ctx, req.ListingID)
		if err != nil {
			return err
		}
		resp.Jobs = api.FromJobs(jobs)
		return nil
	}

	statuses := make([]orders.JobStatus, 0, len(req.Statuses))
	for _, status := range req.Statuses {
		parsed, ok := orders.ParseJobStatus(status)
		if !ok {
			return fmt.Errorf("unknown job status %q", status)
		}
		statuses = append(statuses, parsed)
	}
	jobs, err := s.daemon.ListJobs(s.ctx, statuses)
	if err != nil {
		return err
	}
	resp.Jobs = api.FromJobs(jobs)
	return nil
}

func (s *service) JobDescribe(req JobDescribeRequest, resp *JobDescribeResponse) error {
	if req.ID <= 0 {
		return fmt.Errorf("invalid job id %d", req.ID)
	}
	job, err := s.daemon.GetJob(s.ctx, req.ID)
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("job %d not found", req.ID)
	}
	events, err := s.daemon.EventsForJob(s.ctx, req.ID)
	if err != nil {
		return err
	}
	resp.Job = api.FromJob(job)
	resp.Events = api.FromEvents(events)
	return nil
}

func (s *service) Transition(req TransitionRequest, resp *TransitionResponse) error {
	listing, err := s.daemon.Transition(s.ctx, pipeline.Request{
		ListingID:  req.ListingID,
		Target:     orders.OpsStatus(req.Target),
		Actor:      req.Actor,
		Privileged: req.Privileged,
		Notes:      req.Notes,
	})
	if err != nil {
		return err
	}
	resp.Listing = api.FromListing(listing)
	s.logger.Info("listing transitioned via IPC",
		logging.Int64(logging.FieldListingID, req.ListingID),
		logging.String("to", req.Target),
	)
	return nil
}

func (s *service) QCQueue(_ QCQueueRequest, resp *QCQueueResponse) error {
	entries, err := s.daemon.QCQueue(s.ctx)
	if err != nil {
		return err
	}
	resp.Entries = api.FromQCEntries(entries)
	return nil
}

func (s *service) Events(req EventsRequest, resp *EventsResponse) error {
	if req.ListingID <= 0 {
		return fmt.Errorf("invalid listing id %d", req.ListingID)
	}
	events, err := s.daemon.EventsForListing(s.ctx, req.ListingID)
	if err != nil {
		return err
	}
	resp.Events = api.FromEvents(events)
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, err := s.daemon.TestNotification(s.ctx)
	if err != nil {
		return err
	}
	resp.Sent = sent
	return nil
}

func (s *service) LogTail(req LogTailRequest, resp *LogTailResponse) error {
	result, err := s.daemon.TailLogs(s.ctx, logs.TailOptions{
		Offset: req.Offset,
		Limit:  req.Limit,
		Follow: req.Follow,
		Wait:   time.Duration(req.WaitMillis) * time.Millisecond,
	})
	if err != nil {
		return err
	}
	resp.Lines = result.Lines
	if resp.Lines == nil {
		resp.Lines = []string{}
	}
	resp.Offset = result.Offset
	return nil
}
