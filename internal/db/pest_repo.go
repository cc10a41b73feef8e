package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"agriklima/internal/types"
)

// PestRepository provides data access for the pest catalog. The list-valued
// columns (affected crops, symptoms, treatments, prevention) are Postgres
// text arrays.
type PestRepository struct {
	db DBTX
}

// NewPestRepository creates a new PestRepository.
func NewPestRepository(db DBTX) *PestRepository {
	return &PestRepository{db: db}
}

const pestColumns = `p.id, p.name, p.image_url, p.affected_crops, p.symptoms,
	p.treatments, p.prevention, p.created_at, p.updated_at`

func scanPest(row pgx.Row) (*types.Pest, error) {
	var p types.Pest
	var imageURL *string
	err := row.Scan(
		&p.ID,
		&p.Name,
		&imageURL,
		&p.AffectedCrops,
		&p.Symptoms,
		&p.Treatments,
		&p.Prevention,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if imageURL != nil {
		p.ImageURL = *imageURL
	}
	return &p, nil
}

// Create inserts a new pest catalog entry.
func (r *PestRepository) Create(ctx context.Context, p *types.Pest) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO pests (id, name, image_url, affected_crops, symptoms,
		 treatments, prevention, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID,
		p.Name,
		nilIfEmpty(p.ImageURL),
		p.AffectedCrops,
		p.Symptoms,
		p.Treatments,
		p.Prevention,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create pest", err)
	}
	return nil
}

// GetByID retrieves a pest by ID.
func (r *PestRepository) GetByID(ctx context.Context, id string) (*types.Pest, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+pestColumns+` FROM pests p WHERE p.id = $1`,
		id,
	)
	p, err := scanPest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundPest, "pest not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve pest", err)
	}
	return p, nil
}

// Update replaces the mutable fields of a pest entry.
func (r *PestRepository) Update(ctx context.Context, p *types.Pest) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE pests SET name = $1, image_url = $2, affected_crops = $3,
		 symptoms = $4, treatments = $5, prevention = $6, updated_at = $7
		 WHERE id = $8`,
		p.Name,
		nilIfEmpty(p.ImageURL),
		p.AffectedCrops,
		p.Symptoms,
		p.Treatments,
		p.Prevention,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to update pest", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundPest, "pest not found", nil)
	}
	return nil
}

// Delete removes a pest entry.
func (r *PestRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM pests WHERE id = $1`, id)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to delete pest", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundPest, "pest not found", nil)
	}
	return nil
}

// List returns pests ordered by name. A non-empty Search matches the pest
// name or any affected crop.
func (r *PestRepository) List(ctx context.Context, filter types.ListFilter) ([]*types.Pest, types.PageInfo, error) {
	filter.Normalize()
	search := "%" + filter.Search + "%"

	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM pests
		 WHERE ($1 = '%%' OR name ILIKE $1
		        OR EXISTS (SELECT 1 FROM unnest(affected_crops) ac WHERE ac ILIKE $1))`,
		search,
	).Scan(&total); err != nil {
		return nil, types.PageInfo{}, types.NewAppError(types.ErrCodeInternalDB, "failed to count pests", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+pestColumns+`
		 FROM pests p
		 WHERE ($1 = '%%' OR p.name ILIKE $1
		        OR EXISTS (SELECT 1 FROM unnest(p.affected_crops) ac WHERE ac ILIKE $1))
		 ORDER BY p.name
		 OFFSET $2 LIMIT $3`,
		search,
		filter.Offset,
		filter.Limit,
	)
	if err != nil {
		return nil, types.PageInfo{}, types.NewAppError(types.ErrCodeInternalDB, "failed to list pests", err)
	}
	defer rows.Close()

	pests := make([]*types.Pest, 0, filter.Limit)
	for rows.Next() {
		p, err := scanPest(rows)
		if err != nil {
			return nil, types.PageInfo{}, types.NewAppError(types.ErrCodeInternalDB, "failed to scan pest row", err)
		}
		pests = append(pests, p)
	}
	if err := rows.Err(); err != nil {
		return nil, types.PageInfo{}, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate pest rows", err)
	}

	page := types.PageInfo{
		HasMore:    filter.Offset+len(pests) < total,
		Offset:     filter.Offset,
		Limit:      filter.Limit,
		TotalItems: total,
	}
	return pests, page, nil
}
