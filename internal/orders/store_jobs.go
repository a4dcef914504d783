package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bracket/internal/services"
)

const jobColumns = "id, listing_id, external_job_id, status, input_refs, output_ref, metrics_json, retry_count, error_message, queued_at, started_at, completed_at, last_failed_at, created_at, updated_at"

// CreateSubmission inserts a new processing job, marks the referenced media
// assets as processing, and appends the submission audit event, all in one
// transaction. On any failure nothing is written.
func (s *Store) CreateSubmission(ctx context.Context, job *ProcessingJob, assetIDs []int64, event *JobEvent) (*ProcessingJob, error) {
	if job == nil {
		return nil, errors.New("job is nil")
	}
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	inputRefs, err := json.Marshal(job.InputRefs)
	if err != nil {
		return nil, fmt.Errorf("marshal input refs: %w", err)
	}

	var jobID int64
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(
			ctx,
			`INSERT INTO processing_jobs (
                listing_id, external_job_id, status, input_refs, output_ref, metrics_json,
                retry_count, error_message, queued_at, started_at, completed_at, last_failed_at,
                created_at, updated_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			job.ListingID,
			nullableString(job.ExternalJobID),
			job.Status,
			string(inputRefs),
			nullableString(job.OutputRef),
			nullableString(job.MetricsJSON),
			job.RetryCount,
			nullableString(job.ErrorMessage),
			nullableTime(job.QueuedAt),
			nullableTime(job.StartedAt),
			nullableTime(job.CompletedAt),
			nullableTime(job.LastFailedAt),
			now.Format(time.RFC3339Nano),
			now.Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert job: %w", err)
		}
		jobID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}

		if err := setAssetsQCStatus(ctx, tx, assetIDs, AssetQCProcessing); err != nil {
			return err
		}

		if event != nil {
			event.JobID = &jobID
			if err := insertEvent(ctx, tx, event); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetJob(ctx, jobID)
}

// GetJob fetches a processing job by identifier. Returns nil when absent.
func (s *Store) GetJob(ctx context.Context, id int64) (*ProcessingJob, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+jobColumns+` FROM processing_jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// JobsByStatus returns jobs matching a status set, or all jobs when no status
// is provided, ordered by creation time.
func (s *Store) JobsByStatus(ctx context.Context, statuses ...JobStatus) ([]*ProcessingJob, error) {
	baseQuery := `SELECT ` + jobColumns + ` FROM processing_jobs`
	orderClause := ` ORDER BY created_at`

	var (
		rows *sql.Rows
		err  error
	)
	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ensureContext(ctx), baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		rows, err = s.db.QueryContext(ensureContext(ctx), baseQuery+` WHERE status IN (`+placeholders+`)`+orderClause, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	return collectJobs(rows)
}

// JobsForListing returns every job recorded for a listing, newest first.
func (s *Store) JobsForListing(ctx context.Context, listingID int64) ([]*ProcessingJob, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+jobColumns+` FROM processing_jobs WHERE listing_id = ? ORDER BY created_at DESC`,
		listingID,
	)
	if err != nil {
		return nil, fmt.Errorf("list jobs for listing: %w", err)
	}
	defer rows.Close()

	return collectJobs(rows)
}

// RetryCandidates returns jobs eligible for retry (failed or pending_retry),
// oldest first, optionally filtered to one listing and capped at limit.
func (s *Store) RetryCandidates(ctx context.Context, listingID int64, limit int) ([]*ProcessingJob, error) {
	query := `SELECT ` + jobColumns + ` FROM processing_jobs WHERE status IN (?, ?)`
	args := []any{JobFailed, JobPendingRetry}
	if listingID > 0 {
		query += ` AND listing_id = ?`
		args = append(args, listingID)
	}
	query += ` ORDER BY created_at`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list retry candidates: %w", err)
	}
	defer rows.Close()

	return collectJobs(rows)
}

// UpdateJob persists changes to an existing job guarded by a compare-and-swap
// on the expected current status, appending the audit event (when provided)
// in the same transaction. A row that moved out of the expected status is
// reported as a conflict and left untouched.
func (s *Store) UpdateJob(ctx context.Context, job *ProcessingJob, expected JobStatus, event *JobEvent) error {
	if job == nil {
		return errors.New("job is nil")
	}
	job.UpdatedAt = time.Now().UTC()

	inputRefs, err := json.Marshal(job.InputRefs)
	if err != nil {
		return fmt.Errorf("marshal input refs: %w", err)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(
			ctx,
			`UPDATE processing_jobs
             SET external_job_id = ?, status = ?, input_refs = ?, output_ref = ?,
                 metrics_json = ?, retry_count = ?, error_message = ?, queued_at = ?,
                 started_at = ?, completed_at = ?, last_failed_at = ?, updated_at = ?
             WHERE id = ? AND status = ?`,
			nullableString(job.ExternalJobID),
			job.Status,
			string(inputRefs),
			nullableString(job.OutputRef),
			nullableString(job.MetricsJSON),
			job.RetryCount,
			nullableString(job.ErrorMessage),
			nullableTime(job.QueuedAt),
			nullableTime(job.StartedAt),
			nullableTime(job.CompletedAt),
			nullableTime(job.LastFailedAt),
			job.UpdatedAt.Format(time.RFC3339Nano),
			job.ID,
			expected,
		)
		if err != nil {
			return fmt.Errorf("update job: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return s.classifyJobWriteMiss(ctx, tx, job.ID, expected)
		}
		if event != nil {
			if event.JobID == nil {
				event.JobID = &job.ID
			}
			return insertEvent(ctx, tx, event)
		}
		return nil
	})
}

func (s *Store) classifyJobWriteMiss(ctx context.Context, tx *sql.Tx, id int64, expected JobStatus) error {
	var current JobStatus
	row := tx.QueryRowContext(ctx, `SELECT status FROM processing_jobs WHERE id = ?`, id)
	if err := row.Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return services.Wrap(services.ErrNotFound, "orders", "update job", fmt.Sprintf("job %d", id), nil)
		}
		return fmt.Errorf("read job status: %w", err)
	}
	return services.Wrap(services.ErrConflict, "orders", "update job",
		fmt.Sprintf("job %d moved from %s to %s during update", id, expected, current), nil)
}

func collectJobs(rows *sql.Rows) ([]*ProcessingJob, error) {
	var jobs []*ProcessingJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func scanJob(scanner interface{ Scan(dest ...any) error }) (*ProcessingJob, error) {
	var (
		id           int64
		listingID    int64
		externalID   sql.NullString
		statusStr    string
		inputRefsRaw string
		outputRef    sql.NullString
		metrics      sql.NullString
		retryCount   int
		errorMessage sql.NullString
		queuedRaw    sql.NullString
		startedRaw   sql.NullString
		completedRaw sql.NullString
		failedRaw    sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&listingID,
		&externalID,
		&statusStr,
		&inputRefsRaw,
		&outputRef,
		&metrics,
		&retryCount,
		&errorMessage,
		&queuedRaw,
		&startedRaw,
		&completedRaw,
		&failedRaw,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	job := &ProcessingJob{
		ID:            id,
		ListingID:     listingID,
		ExternalJobID: externalID.String,
		Status:        JobStatus(statusStr),
		OutputRef:     outputRef.String,
		MetricsJSON:   metrics.String,
		RetryCount:    retryCount,
		ErrorMessage:  errorMessage.String,
		QueuedAt:      parseTimePtr(queuedRaw),
		StartedAt:     parseTimePtr(startedRaw),
		CompletedAt:   parseTimePtr(completedRaw),
		LastFailedAt:  parseTimePtr(failedRaw),
	}
	if inputRefsRaw != "" {
		if err := json.Unmarshal([]byte(inputRefsRaw), &job.InputRefs); err != nil {
			return nil, fmt.Errorf("decode input refs for job %d: %w", id, err)
		}
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		job.UpdatedAt = updated
	}
	return job, nil
}
