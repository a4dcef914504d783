package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const eventColumns = "id, listing_id, job_id, event_type, old_value, new_value, actor, notes, created_at"

// NewEvent builds an audit event with a fresh identifier and timestamp.
func NewEvent(listingID int64, eventType, oldValue, newValue, actor, notes string) *JobEvent {
	return &JobEvent{
		ID:        uuid.NewString(),
		ListingID: listingID,
		EventType: eventType,
		OldValue:  oldValue,
		NewValue:  newValue,
		Actor:     actor,
		Notes:     notes,
		CreatedAt: time.Now().UTC(),
	}
}

// AppendEvent writes an audit record outside any larger transaction.
func (s *Store) AppendEvent(ctx context.Context, event *JobEvent) error {
	if event == nil {
		return errors.New("event is nil")
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return insertEvent(ctx, tx, event)
	})
}

func insertEvent(ctx context.Context, tx *sql.Tx, event *JobEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	if event.Actor == "" {
		event.Actor = "system"
	}
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO job_events (id, listing_id, job_id, event_type, old_value, new_value, actor, notes, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.ListingID,
		nullableInt64(event.JobID),
		event.EventType,
		nullableString(event.OldValue),
		nullableString(event.NewValue),
		event.Actor,
		nullableString(event.Notes),
		event.CreatedAt.Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// EventsForListing returns the audit trail for a listing, oldest first.
func (s *Store) EventsForListing(ctx context.Context, listingID int64) ([]*JobEvent, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+eventColumns+` FROM job_events WHERE listing_id = ? ORDER BY created_at, id`,
		listingID,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

// EventsForJob returns the audit trail for one processing job, oldest first.
func (s *Store) EventsForJob(ctx context.Context, jobID int64) ([]*JobEvent, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+eventColumns+` FROM job_events WHERE job_id = ? ORDER BY created_at, id`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("list job events: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

func collectEvents(rows *sql.Rows) ([]*JobEvent, error) {
	var events []*JobEvent
	for rows.Next() {
		var (
			event      JobEvent
			jobID      sql.NullInt64
			oldValue   sql.NullString
			newValue   sql.NullString
			notes      sql.NullString
			createdRaw sql.NullString
		)
		if err := rows.Scan(&event.ID, &event.ListingID, &jobID, &event.EventType, &oldValue, &newValue, &event.Actor, &notes, &createdRaw); err != nil {
			return nil, err
		}
		if jobID.Valid {
			id := jobID.Int64
			event.JobID = &id
		}
		event.OldValue = oldValue.String
		event.NewValue = newValue.String
		event.Notes = notes.String
		if created, err := parseTimeString(createdRaw.String); err == nil {
			event.CreatedAt = created
		}
		events = append(events, &event)
	}
	return events, rows.Err()
}
