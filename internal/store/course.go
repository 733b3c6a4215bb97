package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/taskcourse/apiserver/types"
)

// CourseRepository handles persistence for courses.
type CourseRepository struct {
	db *sql.DB
}

func NewCourseRepository(db *sql.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = "id, title, description, start_date, end_date, created_at, updated_at"

func (r *CourseRepository) List(ctx context.Context) ([]types.Course, error) {
	const query = `
		SELECT ` + courseColumns + `
		FROM courses
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCourses(rows)
}

func (r *CourseRepository) Get(ctx context.Context, id int) (types.Course, error) {
	const query = `
		SELECT ` + courseColumns + `
		FROM courses
		WHERE id = $1`
	return scanCourse(r.db.QueryRowContext(ctx, query, id))
}

// GetByTitle looks a course up by its exact title. Titles are compared
// case-sensitively.
func (r *CourseRepository) GetByTitle(ctx context.Context, title string) (types.Course, error) {
	const query = `
		SELECT ` + courseColumns + `
		FROM courses
		WHERE title = $1`
	return scanCourse(r.db.QueryRowContext(ctx, query, title))
}

// ListByIDs resolves a set of course ids. Ids that no longer resolve
// are silently skipped; deleting a course does not clean up
// registration lists.
func (r *CourseRepository) ListByIDs(ctx context.Context, ids []int) ([]types.Course, error) {
	if len(ids) == 0 {
		return []types.Course{}, nil
	}

	int64IDs := make([]int64, len(ids))
	for i, id := range ids {
		int64IDs[i] = int64(id)
	}

	const query = `
		SELECT ` + courseColumns + `
		FROM courses
		WHERE id = ANY($1)
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, pq.Int64Array(int64IDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCourses(rows)
}

func (r *CourseRepository) Create(ctx context.Context, course types.Course) (types.Course, error) {
	now := time.Now()
	course.CreatedAt = now
	course.UpdatedAt = now

	const query = `
		INSERT INTO courses (title, description, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		course.Title,
		nullString(course.Description),
		course.StartDate,
		course.EndDate,
		course.CreatedAt,
		course.UpdatedAt,
	).Scan(&course.ID); err != nil {
		return types.Course{}, mapWriteError(err)
	}
	return course, nil
}

func (r *CourseRepository) Update(ctx context.Context, course types.Course) (types.Course, error) {
	course.UpdatedAt = time.Now()

	const query = `
		UPDATE courses
		SET title = $1,
			description = $2,
			start_date = $3,
			end_date = $4,
			updated_at = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		course.Title,
		nullString(course.Description),
		course.StartDate,
		course.EndDate,
		course.UpdatedAt,
		course.ID,
	)
	if err != nil {
		return types.Course{}, mapWriteError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Course{}, err
	}
	if affected == 0 {
		return types.Course{}, ErrNotFound
	}
	return course, nil
}

func (r *CourseRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM courses WHERE id = $1`
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

func scanCourse(row *sql.Row) (types.Course, error) {
	var course types.Course
	var description sql.NullString
	err := row.Scan(
		&course.ID,
		&course.Title,
		&description,
		&course.StartDate,
		&course.EndDate,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Course{}, ErrNotFound
		}
		return types.Course{}, err
	}
	course.Description = description.String
	return course, nil
}

func collectCourses(rows *sql.Rows) ([]types.Course, error) {
	courses := make([]types.Course, 0)
	for rows.Next() {
		var course types.Course
		var description sql.NullString
		if err := rows.Scan(
			&course.ID,
			&course.Title,
			&description,
			&course.StartDate,
			&course.EndDate,
			&course.CreatedAt,
			&course.UpdatedAt,
		); err != nil {
			return nil, err
		}
		course.Description = description.String
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return courses, nil
}
