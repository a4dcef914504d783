package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const assetColumns = "id, listing_id, kind, storage_path, qc_status, created_at"

// CreateAsset records a captured media file for a listing.
func (s *Store) CreateAsset(ctx context.Context, asset *MediaAsset) (*MediaAsset, error) {
	if asset == nil {
		return nil, errors.New("asset is nil")
	}
	now := time.Now().UTC()
	if asset.QCStatus == "" {
		asset.QCStatus = AssetQCPending
	}
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = now
	}

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO media_assets (listing_id, kind, storage_path, qc_status, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		asset.ListingID,
		asset.Kind,
		asset.StoragePath,
		asset.QCStatus,
		asset.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert asset: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	asset.ID = id
	return asset, nil
}

// AssetsForListing returns every media asset recorded for a listing.
func (s *Store) AssetsForListing(ctx context.Context, listingID int64) ([]*MediaAsset, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+assetColumns+` FROM media_assets WHERE listing_id = ? ORDER BY id`,
		listingID,
	)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()
	return collectAssets(rows)
}

// EligibleAssets returns the listing's assets that may feed a fusion job:
// everything not rejected by QC, in capture order. Retries resolve inputs
// through this query so assets added after the first submission are picked up.
func (s *Store) EligibleAssets(ctx context.Context, listingID int64) ([]*MediaAsset, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+assetColumns+` FROM media_assets WHERE listing_id = ? AND qc_status != ? ORDER BY id`,
		listingID,
		AssetQCRejected,
	)
	if err != nil {
		return nil, fmt.Errorf("list eligible assets: %w", err)
	}
	defer rows.Close()
	return collectAssets(rows)
}

// SetAssetsQCStatus updates the QC status of the given assets.
func (s *Store) SetAssetsQCStatus(ctx context.Context, ids []int64, status AssetQCStatus) error {
	if len(ids) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return setAssetsQCStatus(ctx, tx, ids, status)
	})
}

func setAssetsQCStatus(ctx context.Context, tx *sql.Tx, ids []int64, status AssetQCStatus) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := makePlaceholders(len(ids))
	args := make([]any, 0, len(ids)+1)
	args = append(args, status)
	for _, id := range ids {
		args = append(args, id)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE media_assets SET qc_status = ? WHERE id IN (`+placeholders+`)`, args...); err != nil {
		return fmt.Errorf("update asset qc status: %w", err)
	}
	return nil
}

func collectAssets(rows *sql.Rows) ([]*MediaAsset, error) {
	var assets []*MediaAsset
	for rows.Next() {
		var (
			asset      MediaAsset
			statusStr  string
			createdRaw sql.NullString
		)
		if err := rows.Scan(&asset.ID, &asset.ListingID, &asset.Kind, &asset.StoragePath, &statusStr, &createdRaw); err != nil {
			return nil, err
		}
		asset.QCStatus = AssetQCStatus(statusStr)
		if created, err := parseTimeString(createdRaw.String); err == nil {
			asset.CreatedAt = created
		}
		assets = append(assets, &asset)
	}
	return assets, rows.Err()
}
