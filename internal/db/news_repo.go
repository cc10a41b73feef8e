package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"agriklima/internal/types"
)

// NewsRepository provides data access for news articles.
type NewsRepository struct {
	db DBTX
}

// NewNewsRepository creates a new NewsRepository.
func NewNewsRepository(db DBTX) *NewsRepository {
	return &NewsRepository{db: db}
}

const newsColumns = `n.id, n.title, n.author, n.summary, n.content,
	n.image_url, n.published_at, n.created_at, n.updated_at`

func scanArticle(row pgx.Row) (*types.NewsArticle, error) {
	var a types.NewsArticle
	var (
		author   *string
		summary  *string
		imageURL *string
	)
	err := row.Scan(
		&a.ID,
		&a.Title,
		&author,
		&summary,
		&a.Content,
		&imageURL,
		&a.PublishedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if author != nil {
		a.Author = *author
	}
	if summary != nil {
		a.Summary = *summary
	}
	if imageURL != nil {
		a.ImageURL = *imageURL
	}
	return &a, nil
}

// Create inserts a new article.
func (r *NewsRepository) Create(ctx context.Context, a *types.NewsArticle) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO news_articles (id, title, author, summary, content,
		 image_url, published_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID,
		a.Title,
		nilIfEmpty(a.Author),
		nilIfEmpty(a.Summary),
		a.Content,
		nilIfEmpty(a.ImageURL),
		a.PublishedAt,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create article", err)
	}
	return nil
}

// GetByID retrieves an article by ID.
func (r *NewsRepository) GetByID(ctx context.Context, id string) (*types.NewsArticle, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+newsColumns+` FROM news_articles n WHERE n.id = $1`,
		id,
	)
	a, err := scanArticle(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundNews, "article not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve article", err)
	}
	return a, nil
}

// Update replaces the mutable fields of an article.
func (r *NewsRepository) Update(ctx context.Context, a *types.NewsArticle) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE news_articles SET title = $1, author = $2, summary = $3,
		 content = $4, image_url = $5, published_at = $6, updated_at = $7
		 WHERE id = $8`,
		a.Title,
		nilIfEmpty(a.Author),
		nilIfEmpty(a.Summary),
		a.Content,
		nilIfEmpty(a.ImageURL),
		a.PublishedAt,
		a.UpdatedAt,
		a.ID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to update article", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundNews, "article not found", nil)
	}
	return nil
}

// Delete removes an article.
func (r *NewsRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM news_articles WHERE id = $1`, id)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to delete article", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundNews, "article not found", nil)
	}
	return nil
}

// List returns articles ordered by publication date, newest first.
func (r *NewsRepository) List(ctx context.Context, filter types.ListFilter) ([]*types.NewsArticle, types.PageInfo, error) {
	filter.Normalize()

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM news_articles`).Scan(&total); err != nil {
		return nil, types.PageInfo{}, types.NewAppError(types.ErrCodeInternalDB, "failed to count articles", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+newsColumns+`
		 FROM news_articles n
		 ORDER BY n.published_at DESC
		 OFFSET $1 LIMIT $2`,
		filter.Offset,
		filter.Limit,
	)
	if err != nil {
		return nil, types.PageInfo{}, types.NewAppError(types.ErrCodeInternalDB, "failed to list articles", err)
	}
	defer rows.Close()

	articles := make([]*types.NewsArticle, 0, filter.Limit)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, types.PageInfo{}, types.NewAppError(types.ErrCodeInternalDB, "failed to scan article row", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, types.PageInfo{}, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate article rows", err)
	}

	page := types.PageInfo{
		HasMore:    filter.Offset+len(articles) < total,
		Offset:     filter.Offset,
		Limit:      filter.Limit,
		TotalItems: total,
	}
	return articles, page, nil
}
