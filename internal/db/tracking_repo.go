package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"agriklima/internal/types"
)

// TrackingRepository provides data access for per-user crop tracking rows.
// Queries join the crop catalog for the display name.
type TrackingRepository struct {
	db DBTX
}

// NewTrackingRepository creates a new TrackingRepository.
func NewTrackingRepository(db DBTX) *TrackingRepository {
	return &TrackingRepository{db: db}
}

const trackingColumns = `ct.id, ct.user_id, ct.crop_id, c.name, ct.planted_at,
	ct.expected_harvest, ct.created_at`

func scanTracking(row pgx.Row) (*types.CropTracking, error) {
	var ct types.CropTracking
	err := row.Scan(
		&ct.ID,
		&ct.UserID,
		&ct.CropID,
		&ct.CropName,
		&ct.PlantedAt,
		&ct.ExpectedHarvest,
		&ct.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ct, nil
}

// Create inserts a new tracking row.
func (r *TrackingRepository) Create(ctx context.Context, ct *types.CropTracking) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO crop_tracking (id, user_id, crop_id, planted_at,
		 expected_harvest, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		ct.ID,
		ct.UserID,
		ct.CropID,
		ct.PlantedAt,
		ct.ExpectedHarvest,
		ct.CreatedAt,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create crop tracking", err)
	}
	return nil
}

// GetByID retrieves a tracking row owned by the given user.
func (r *TrackingRepository) GetByID(ctx context.Context, id, userID string) (*types.CropTracking, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+trackingColumns+`
		 FROM crop_tracking ct
		 JOIN crops c ON c.id = ct.crop_id
		 WHERE ct.id = $1 AND ct.user_id = $2`,
		id,
		userID,
	)
	ct, err := scanTracking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundTracking, "crop tracking not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve crop tracking", err)
	}
	return ct, nil
}

// Delete removes a tracking row owned by the given user.
func (r *TrackingRepository) Delete(ctx context.Context, id, userID string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM crop_tracking WHERE id = $1 AND user_id = $2`,
		id,
		userID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to delete crop tracking", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundTracking, "crop tracking not found", nil)
	}
	return nil
}

// ListByUser returns all tracking rows for a user, newest planting first.
func (r *TrackingRepository) ListByUser(ctx context.Context, userID string) ([]*types.CropTracking, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+trackingColumns+`
		 FROM crop_tracking ct
		 JOIN crops c ON c.id = ct.crop_id
		 WHERE ct.user_id = $1
		 ORDER BY ct.planted_at DESC`,
		userID,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list crop tracking", err)
	}
	defer rows.Close()

	var items []*types.CropTracking
	for rows.Next() {
		ct, err := scanTracking(rows)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan crop tracking row", err)
		}
		items = append(items, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate crop tracking rows", err)
	}
	return items, nil
}
