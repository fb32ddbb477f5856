package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/onlinexam-backend/internal/model"
)

type SubjectRepository struct {
	pool *pgxpool.Pool
}

func NewSubjectRepository(pool *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{pool: pool}
}

func (r *SubjectRepository) Create(ctx context.Context, s *model.Subject) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO subjects (title, description, course_id, img) VALUES ($1, $2, $3, $4)
		 RETURNING id, version, created_at, updated_at`,
		s.Title, s.Description, s.CourseID, s.Img,
	).Scan(&s.ID, &s.Version, &s.CreatedAt, &s.UpdatedAt)
	return mapError(err)
}

func (r *SubjectRepository) GetByID(ctx context.Context, id int) (*model.Subject, error) {
	s := &model.Subject{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, description, course_id, img, version, created_at, updated_at
		 FROM subjects WHERE id = $1`, id,
	).Scan(&s.ID, &s.Title, &s.Description, &s.CourseID, &s.Img, &s.Version, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return s, nil
}

// GetAll lists subjects, restricted to one course when courseID > 0.
func (r *SubjectRepository) GetAll(ctx context.Context, courseID int) ([]model.Subject, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, description, course_id, img, version, created_at, updated_at
		 FROM subjects
		 WHERE $1::int = 0 OR course_id = $1
		 ORDER BY title ASC`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subjects := []model.Subject{}
	for rows.Next() {
		var s model.Subject
		if err := rows.Scan(&s.ID, &s.Title, &s.Description, &s.CourseID, &s.Img, &s.Version, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

func (r *SubjectRepository) Update(ctx context.Context, s *model.Subject) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE subjects SET title = $1, description = $2, course_id = $3, img = $4,
			version = version + 1, updated_at = NOW()
		 WHERE id = $5 AND version = $6
		 RETURNING version, created_at, updated_at`,
		s.Title, s.Description, s.CourseID, s.Img, s.ID, s.Version,
	).Scan(&s.Version, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return versionMiss(ctx, r.pool, "subjects", s.ID)
	}
	return mapError(err)
}

func (r *SubjectRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
