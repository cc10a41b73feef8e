package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"agriklima/internal/types"
)

// TaskRepository provides data access for per-user farm tasks. Every query
// is scoped by user ID so one user can never see or mutate another's tasks.
type TaskRepository struct {
	db DBTX
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `t.id, t.user_id, t.title, t.notes, t.due_date,
	t.completed, t.created_at, t.updated_at`

func scanTask(row pgx.Row) (*types.Task, error) {
	var t types.Task
	var notes *string
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&notes,
		&t.DueDate,
		&t.Completed,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if notes != nil {
		t.Notes = *notes
	}
	return &t, nil
}

// Create inserts a new task.
func (r *TaskRepository) Create(ctx context.Context, t *types.Task) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO tasks (id, user_id, title, notes, due_date, completed,
		 created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID,
		t.UserID,
		t.Title,
		nilIfEmpty(t.Notes),
		t.DueDate,
		t.Completed,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create task", err)
	}
	return nil
}

// GetByID retrieves a task owned by the given user.
func (r *TaskRepository) GetByID(ctx context.Context, id, userID string) (*types.Task, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+taskColumns+`
		 FROM tasks t
		 WHERE t.id = $1 AND t.user_id = $2`,
		id,
		userID,
	)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundTask, "task not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve task", err)
	}
	return t, nil
}

// Update replaces the mutable fields of a task owned by the given user.
func (r *TaskRepository) Update(ctx context.Context, t *types.Task) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE tasks SET title = $1, notes = $2, due_date = $3,
		 completed = $4, updated_at = $5
		 WHERE id = $6 AND user_id = $7`,
		t.Title,
		nilIfEmpty(t.Notes),
		t.DueDate,
		t.Completed,
		t.UpdatedAt,
		t.ID,
		t.UserID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to update task", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundTask, "task not found", nil)
	}
	return nil
}

// Delete removes a task owned by the given user.
func (r *TaskRepository) Delete(ctx context.Context, id, userID string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`,
		id,
		userID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to delete task", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundTask, "task not found", nil)
	}
	return nil
}

// ListByUser returns all tasks for a user ordered by due date.
func (r *TaskRepository) ListByUser(ctx context.Context, userID string) ([]*types.Task, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+taskColumns+`
		 FROM tasks t
		 WHERE t.user_id = $1
		 ORDER BY t.due_date, t.created_at`,
		userID,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list tasks", err)
	}
	defer rows.Close()

	var tasks []*types.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan task row", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate task rows", err)
	}
	return tasks, nil
}
