package db

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"agriklima/internal/types"
)

// CropRepository provides data access for the crop catalog.
type CropRepository struct {
	db DBTX
}

// NewCropRepository creates a new CropRepository.
func NewCropRepository(db DBTX) *CropRepository {
	return &CropRepository{db: db}
}

const cropColumns = `c.id, c.name, c.category, c.description, c.image_url,
	c.planting_season, c.harvest_time, c.growing_days, c.guide, c.created_at, c.updated_at`

// scanCrop scans a crop row. The guide column is JSONB and unmarshals into
// the CropGuide sections.
func scanCrop(row pgx.Row) (*types.Crop, error) {
	var c types.Crop
	var (
		description    *string
		imageURL       *string
		plantingSeason *string
		harvestTime    *string
		guideRaw       []byte
	)
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Category,
		&description,
		&imageURL,
		&plantingSeason,
		&harvestTime,
		&c.GrowingDays,
		&guideRaw,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if description != nil {
		c.Description = *description
	}
	if imageURL != nil {
		c.ImageURL = *imageURL
	}
	if plantingSeason != nil {
		c.PlantingSeason = *plantingSeason
	}
	if harvestTime != nil {
		c.HarvestTime = *harvestTime
	}
	if len(guideRaw) > 0 {
		if err := json.Unmarshal(guideRaw, &c.Guide); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

// Create inserts a new crop catalog entry.
func (r *CropRepository) Create(ctx context.Context, c *types.Crop) error {
	guide, err := json.Marshal(c.Guide)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to encode crop guide", err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO crops (id, name, category, description, image_url,
		 planting_season, harvest_time, growing_days, guide, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		c.ID,
		c.Name,
		c.Category,
		nilIfEmpty(c.Description),
		nilIfEmpty(c.ImageURL),
		nilIfEmpty(c.PlantingSeason),
		nilIfEmpty(c.HarvestTime),
		c.GrowingDays,
		guide,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create crop", err)
	}
	return nil
}

// GetByID retrieves a crop by ID.
func (r *CropRepository) GetByID(ctx context.Context, id string) (*types.Crop, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+cropColumns+` FROM crops c WHERE c.id = $1`,
		id,
	)
	c, err := scanCrop(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundCrop, "crop not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve crop", err)
	}
	return c, nil
}

// Update replaces the mutable fields of a crop entry.
func (r *CropRepository) Update(ctx context.Context, c *types.Crop) error {
	guide, err := json.Marshal(c.Guide)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to encode crop guide", err)
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE crops SET name = $1, category = $2, description = $3,
		 image_url = $4, planting_season = $5, harvest_time = $6,
		 growing_days = $7, guide = $8, updated_at = $9
		 WHERE id = $10`,
		c.Name,
		c.Category,
		nilIfEmpty(c.Description),
		nilIfEmpty(c.ImageURL),
		nilIfEmpty(c.PlantingSeason),
		nilIfEmpty(c.HarvestTime),
		c.GrowingDays,
		guide,
		c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to update crop", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundCrop, "crop not found", nil)
	}
	return nil
}

// Delete removes a crop entry. Tracking rows referencing it are removed by
// the schema's ON DELETE CASCADE.
func (r *CropRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM crops WHERE id = $1`, id)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to delete crop", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundCrop, "crop not found", nil)
	}
	return nil
}

// List returns crops matching the filter, ordered by name. A non-empty
// Search matches name or category, case-insensitively.
func (r *CropRepository) List(ctx context.Context, filter types.ListFilter) ([]*types.Crop, types.PageInfo, error) {
	filter.Normalize()
	search := "%" + filter.Search + "%"

	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM crops WHERE ($1 = '%%' OR name ILIKE $1 OR category ILIKE $1)`,
		search,
	).Scan(&total); err != nil {
		return nil, types.PageInfo{}, types.NewAppError(types.ErrCodeInternalDB, "failed to count crops", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+cropColumns+`
		 FROM crops c
		 WHERE ($1 = '%%' OR c.name ILIKE $1 OR c.category ILIKE $1)
		 ORDER BY c.name
		 OFFSET $2 LIMIT $3`,
		search,
		filter.Offset,
		filter.Limit,
	)
	if err != nil {
		return nil, types.PageInfo{}, types.NewAppError(types.ErrCodeInternalDB, "failed to list crops", err)
	}
	defer rows.Close()

	crops := make([]*types.Crop, 0, filter.Limit)
	for rows.Next() {
		c, err := scanCrop(rows)
		if err != nil {
			return nil, types.PageInfo{}, types.NewAppError(types.ErrCodeInternalDB, "failed to scan crop row", err)
		}
		crops = append(crops, c)
	}
	if err := rows.Err(); err != nil {
		return nil, types.PageInfo{}, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate crop rows", err)
	}

	page := types.PageInfo{
		HasMore:    filter.Offset+len(crops) < total,
		Offset:     filter.Offset,
		Limit:      filter.Limit,
		TotalItems: total,
	}
	return crops, page, nil
}
