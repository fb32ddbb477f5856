package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/onlinexam-backend/internal/model"
)

// ExamRepository handles exam data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

// GetByID retrieves an exam without its questions.
func (r *ExamRepository) GetByID(ctx context.Context, id int) (*model.Exam, error) {
	e := &model.Exam{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, description, duration_minutes, subject_id, version, created_at, updated_at
		 FROM exams WHERE id = $1`, id,
	).Scan(&e.ID, &e.Title, &e.Description, &e.DurationMinutes, &e.SubjectID,
		&e.Version, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return e, nil
}

// ListPaginated retrieves exams with pagination.
// Pass subjectID=0 to list exams of every subject.
func (r *ExamRepository) ListPaginated(ctx context.Context, subjectID, limit, offset int) ([]model.Exam, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exams WHERE $1::int = 0 OR subject_id = $1`, subjectID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, title, description, duration_minutes, subject_id, version, created_at, updated_at
		 FROM exams
		 WHERE $1::int = 0 OR subject_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		subjectID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	exams := []model.Exam{}
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.DurationMinutes, &e.SubjectID,
			&e.Version, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, 0, err
		}
		exams = append(exams, e)
	}
	return exams, total, rows.Err()
}

// Create inserts a new exam.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO exams (title, description, duration_minutes, subject_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, version, created_at, updated_at`,
		e.Title, e.Description, e.DurationMinutes, e.SubjectID,
	).Scan(&e.ID, &e.Version, &e.CreatedAt, &e.UpdatedAt)
	return mapError(err)
}

// Update writes e if its version still matches.
func (r *ExamRepository) Update(ctx context.Context, e *model.Exam) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE exams SET title = $1, description = $2, duration_minutes = $3, subject_id = $4,
			version = version + 1, updated_at = NOW()
		 WHERE id = $5 AND version = $6
		 RETURNING version, created_at, updated_at`,
		e.Title, e.Description, e.DurationMinutes, e.SubjectID, e.ID, e.Version,
	).Scan(&e.Version, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return versionMiss(ctx, r.pool, "exams", e.ID)
	}
	return mapError(err)
}

// Delete removes an exam and, by cascade, its questions.
func (r *ExamRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM exams WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
