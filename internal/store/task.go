package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/taskcourse/apiserver/types"
)

// TaskRepository handles persistence for tasks.
type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// TaskListOptions narrows and orders an owner-scoped task listing.
type TaskListOptions struct {
	Offset int
	Limit  int
	Search string
	SortBy string
}

const taskColumns = "id, title, description, status, due_date, created_by, created_at, updated_at"

// Columns a task listing may be sorted on.
var taskSortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"title":      "title",
}

func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID int, opts TaskListOptions) ([]types.Task, int, error) {
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	if opts.Limit < 1 {
		opts.Limit = 10
	}
	orderBy, ok := taskSortColumns[opts.SortBy]
	if !ok {
		orderBy = "created_at"
	}

	search := "%" + opts.Search + "%"

	const countQuery = `
		SELECT COUNT(1)
		FROM tasks
		WHERE created_by = $1 AND title ILIKE $2`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, ownerID, search).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE created_by = $1 AND title ILIKE $2
		ORDER BY ` + orderBy + `
		OFFSET $3 LIMIT $4`
	rows, err := r.db.QueryContext(ctx, listQuery, ownerID, search, opts.Offset, opts.Limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tasks := make([]types.Task, 0, opts.Limit)
	for rows.Next() {
		task, err := scanTaskRow(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func (r *TaskRepository) Get(ctx context.Context, id int) (types.Task, error) {
	const query = `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1`
	var task types.Task
	var description sql.NullString
	var dueDate sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&task.ID,
		&task.Title,
		&description,
		&task.Status,
		&dueDate,
		&task.CreatedBy,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Task{}, ErrNotFound
		}
		return types.Task{}, err
	}
	task.Description = description.String
	if dueDate.Valid {
		due := dueDate.Time
		task.DueDate = &due
	}
	return task, nil
}

// HasOpenWithTitle reports whether the owner already has a pending or
// in-progress task with the given title, excluding excludeID (pass 0
// on create).
func (r *TaskRepository) HasOpenWithTitle(ctx context.Context, ownerID int, title string, excludeID int) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1
			FROM tasks
			WHERE created_by = $1
				AND title = $2
				AND status <> 'COMPLETED'
				AND id <> $3
		)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, ownerID, title, excludeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *TaskRepository) Create(ctx context.Context, task types.Task) (types.Task, error) {
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	const query = `
		INSERT INTO tasks (title, description, status, due_date, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		task.Title,
		nullString(task.Description),
		task.Status,
		nullTime(task.DueDate),
		task.CreatedBy,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID); err != nil {
		return types.Task{}, mapWriteError(err)
	}
	return task, nil
}

func (r *TaskRepository) Update(ctx context.Context, task types.Task) (types.Task, error) {
	task.UpdatedAt = time.Now()

	const query = `
		UPDATE tasks
		SET title = $1,
			description = $2,
			status = $3,
			due_date = $4,
			updated_at = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		task.Title,
		nullString(task.Description),
		task.Status,
		nullTime(task.DueDate),
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		return types.Task{}, mapWriteError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Task{}, err
	}
	if affected == 0 {
		return types.Task{}, ErrNotFound
	}
	return task, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTaskRow(rows *sql.Rows) (types.Task, error) {
	var task types.Task
	var description sql.NullString
	var dueDate sql.NullTime
	if err := rows.Scan(
		&task.ID,
		&task.Title,
		&description,
		&task.Status,
		&dueDate,
		&task.CreatedBy,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return types.Task{}, err
	}
	task.Description = description.String
	if dueDate.Valid {
		due := dueDate.Time
		task.DueDate = &due
	}
	return task, nil
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func nullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *value, Valid: true}
}
