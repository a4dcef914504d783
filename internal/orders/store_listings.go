package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bracket/internal/services"
)

const listingColumns = "id, address, ops_status, is_rush, scheduled_at, updated_at, delivered_at, editing_started_at, editing_completed_at, photographer_id, editor_id, created_at"

// CreateListing inserts a new listing. A zero OpsStatus defaults to pending
// and a zero UpdatedAt defaults to now; callers seeding historical data may
// supply either explicitly.
func (s *Store) CreateListing(ctx context.Context, listing *Listing) (*Listing, error) {
	if listing == nil {
		return nil, errors.New("listing is nil")
	}
	now := time.Now().UTC()
	if listing.OpsStatus == "" {
		listing.OpsStatus = OpsPending
	}
	if listing.UpdatedAt.IsZero() {
		listing.UpdatedAt = now
	}
	if listing.CreatedAt.IsZero() {
		listing.CreatedAt = now
	}

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO listings (
            address, ops_status, is_rush, scheduled_at, updated_at, delivered_at,
            editing_started_at, editing_completed_at, photographer_id, editor_id, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		listing.Address,
		listing.OpsStatus,
		boolToInt(listing.IsRush),
		nullableTime(listing.ScheduledAt),
		listing.UpdatedAt.Format(time.RFC3339Nano),
		nullableTime(listing.DeliveredAt),
		nullableTime(listing.EditingStartedAt),
		nullableTime(listing.EditingCompletedAt),
		listing.PhotographerID,
		listing.EditorID,
		listing.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert listing: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetListing(ctx, id)
}

// GetListing fetches a listing by identifier. Returns nil when absent.
func (s *Store) GetListing(ctx context.Context, id int64) (*Listing, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+listingColumns+` FROM listings WHERE id = ?`, id)
	listing, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}
	return listing, nil
}

// ListingsByStatus returns listings matching a status set, or all listings
// when no status is provided, ordered by creation time.
func (s *Store) ListingsByStatus(ctx context.Context, statuses ...OpsStatus) ([]*Listing, error) {
	baseQuery := `SELECT ` + listingColumns + ` FROM listings`
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
		rows, err = s.db.QueryContext(ensureContext(ctx), baseQuery+` WHERE ops_status IN (`+placeholders+`)`+orderClause, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	var listings []*Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	return listings, rows.Err()
}

// ListingsAwaitingQC returns listings in the QC review states in the fetch
// order the priority queue expects: rush first, then oldest updated first.
func (s *Store) ListingsAwaitingQC(ctx context.Context) ([]*Listing, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+listingColumns+` FROM listings
         WHERE ops_status IN (?, ?)
         ORDER BY is_rush DESC, updated_at ASC`,
		OpsReadyForQC,
		OpsInQC,
	)
	if err != nil {
		return nil, fmt.Errorf("list qc listings: %w", err)
	}
	defer rows.Close()

	var listings []*Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	return listings, rows.Err()
}

// TransitionListing persists a status change guarded by a compare-and-swap on
// the expected current status, appending the audit event in the same
// transaction. When the row moved out of the expected status between read and
// write, the update is rejected as a conflict and nothing is written.
func (s *Store) TransitionListing(ctx context.Context, listing *Listing, expected OpsStatus, event *JobEvent) error {
	if listing == nil {
		return errors.New("listing is nil")
	}
	if event == nil {
		return errors.New("event is nil")
	}
	listing.UpdatedAt = time.Now().UTC()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(
			ctx,
			`UPDATE listings
             SET ops_status = ?, updated_at = ?, delivered_at = ?, scheduled_at = ?,
                 editing_started_at = ?, editing_completed_at = ?, editor_id = ?
             WHERE id = ? AND ops_status = ?`,
			listing.OpsStatus,
			listing.UpdatedAt.Format(time.RFC3339Nano),
			nullableTime(listing.DeliveredAt),
			nullableTime(listing.ScheduledAt),
			nullableTime(listing.EditingStartedAt),
			nullableTime(listing.EditingCompletedAt),
			listing.EditorID,
			listing.ID,
			expected,
		)
		if err != nil {
			return fmt.Errorf("update listing status: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return s.classifyListingWriteMiss(ctx, tx, listing.ID, expected)
		}
		return insertEvent(ctx, tx, event)
	})
}

func (s *Store) classifyListingWriteMiss(ctx context.Context, tx *sql.Tx, id int64, expected OpsStatus) error {
	var current OpsStatus
	row := tx.QueryRowContext(ctx, `SELECT ops_status FROM listings WHERE id = ?`, id)
	if err := row.Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return services.Wrap(services.ErrNotFound, "orders", "transition", fmt.Sprintf("listing %d", id), nil)
		}
		return fmt.Errorf("read listing status: %w", err)
	}
	return services.Wrap(services.ErrConflict, "orders", "transition",
		fmt.Sprintf("listing %d moved from %s to %s during update", id, expected, current), nil)
}

func scanListing(scanner interface{ Scan(dest ...any) error }) (*Listing, error) {
	var (
		id           int64
		address      string
		statusStr    string
		isRush       int
		scheduledRaw sql.NullString
		updatedRaw   sql.NullString
		deliveredRaw sql.NullString
		editStartRaw sql.NullString
		editDoneRaw  sql.NullString
		photographer sql.NullInt64
		editor       sql.NullInt64
		createdRaw   sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&address,
		&statusStr,
		&isRush,
		&scheduledRaw,
		&updatedRaw,
		&deliveredRaw,
		&editStartRaw,
		&editDoneRaw,
		&photographer,
		&editor,
		&createdRaw,
	); err != nil {
		return nil, err
	}

	listing := &Listing{
		ID:                 id,
		Address:            address,
		OpsStatus:          OpsStatus(statusStr),
		IsRush:             isRush != 0,
		ScheduledAt:        parseTimePtr(scheduledRaw),
		DeliveredAt:        parseTimePtr(deliveredRaw),
		EditingStartedAt:   parseTimePtr(editStartRaw),
		EditingCompletedAt: parseTimePtr(editDoneRaw),
		PhotographerID:     photographer.Int64,
		EditorID:           editor.Int64,
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		listing.UpdatedAt = updated
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		listing.CreatedAt = created
	}
	return listing, nil
}
