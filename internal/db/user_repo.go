package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"agriklima/internal/types"
)

// UserRepository provides data access for the users table.
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new UserRepository backed by the given
// database connection (pool or transaction).
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// userColumns defines the standard set of columns selected for user queries.
// Used consistently across all query methods to avoid column drift.
const userColumns = `u.id, u.first_name, u.last_name, u.email, u.password_hash,
	u.mobile, u.location, u.farm_name, u.is_admin, u.created_at, u.updated_at`

// scanUser scans a single user row into a types.User struct. The columns
// must match the order defined in userColumns. Nullable text columns use
// pointer scan targets.
func scanUser(row pgx.Row) (*types.User, error) {
	var u types.User
	var (
		mobile   *string
		location *string
		farmName *string
	)
	err := row.Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.PasswordHash,
		&mobile,
		&location,
		&farmName,
		&u.IsAdmin,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if mobile != nil {
		u.Mobile = *mobile
	}
	if location != nil {
		u.Location = *location
	}
	if farmName != nil {
		u.FarmName = *farmName
	}
	return &u, nil
}

// Create inserts a new user. A unique-violation on the email column maps to
// conflict_email_exists.
func (r *UserRepository) Create(ctx context.Context, u *types.User) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, first_name, last_name, email, password_hash,
		 mobile, location, farm_name, is_admin, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		u.ID,
		u.FirstName,
		u.LastName,
		u.Email,
		u.PasswordHash,
		nilIfEmpty(u.Mobile),
		nilIfEmpty(u.Location),
		nilIfEmpty(u.FarmName),
		u.IsAdmin,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return types.NewAppError(types.ErrCodeConflictEmail, "email is already registered", err)
		}
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create user", err)
	}
	return nil
}

// GetByID retrieves a user by ID. Returns not_found_user if no active user
// matches.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*types.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+`
		 FROM users u
		 WHERE u.id = $1 AND u.deleted_at IS NULL`,
		id,
	)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundUser, "user not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve user", err)
	}
	return u, nil
}

// GetByEmail retrieves a user by email address. Used by login; returns
// auth_user_not_found so the handler can surface a uniform 401.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*types.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+`
		 FROM users u
		 WHERE u.email = $1 AND u.deleted_at IS NULL`,
		email,
	)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeAuthUserNotFound, "user not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve user by email", err)
	}
	return u, nil
}

// Update writes the mutable profile fields of a user.
func (r *UserRepository) Update(ctx context.Context, u *types.User) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET first_name = $1, last_name = $2, mobile = $3,
		 location = $4, farm_name = $5, updated_at = $6
		 WHERE id = $7 AND deleted_at IS NULL`,
		u.FirstName,
		u.LastName,
		nilIfEmpty(u.Mobile),
		nilIfEmpty(u.Location),
		nilIfEmpty(u.FarmName),
		u.UpdatedAt,
		u.ID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to update user", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundUser, "user not found", nil)
	}
	return nil
}

// SetAdmin toggles the administrator flag on a user.
func (r *UserRepository) SetAdmin(ctx context.Context, id string, isAdmin bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET is_admin = $1, updated_at = now()
		 WHERE id = $2 AND deleted_at IS NULL`,
		isAdmin,
		id,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to update admin flag", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundUser, "user not found", nil)
	}
	return nil
}

// Delete soft-deletes a user. The row is retained for task/tracking history.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundUser, "user not found", nil)
	}
	return nil
}

// List returns users ordered by creation time, newest first, with the total
// row count for pagination.
func (r *UserRepository) List(ctx context.Context, filter types.ListFilter) ([]*types.User, types.PageInfo, error) {
	filter.Normalize()

	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM users WHERE deleted_at IS NULL`,
	).Scan(&total); err != nil {
		return nil, types.PageInfo{}, types.NewAppError(types.ErrCodeInternalDB, "failed to count users", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+`
		 FROM users u
		 WHERE u.deleted_at IS NULL
		 ORDER BY u.created_at DESC
		 OFFSET $1 LIMIT $2`,
		filter.Offset,
		filter.Limit,
	)
	if err != nil {
		return nil, types.PageInfo{}, types.NewAppError(types.ErrCodeInternalDB, "failed to list users", err)
	}
	defer rows.Close()

	users := make([]*types.User, 0, filter.Limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, types.PageInfo{}, types.NewAppError(types.ErrCodeInternalDB, "failed to scan user row", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, types.PageInfo{}, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate user rows", err)
	}

	page := types.PageInfo{
		HasMore:    filter.Offset+len(users) < total,
		Offset:     filter.Offset,
		Limit:      filter.Limit,
		TotalItems: total,
	}
	return users, page, nil
}

// nilIfEmpty converts an empty string to nil so optional text columns store
// NULL instead of "".
func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
