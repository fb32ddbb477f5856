package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/onlinexam-backend/internal/model"
)

type CourseRepository struct {
	pool *pgxpool.Pool
}

func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO courses (title, description, img) VALUES ($1, $2, $3)
		 RETURNING id, version, created_at, updated_at`,
		c.Title, c.Description, c.Img,
	).Scan(&c.ID, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	return mapError(err)
}

func (r *CourseRepository) GetByID(ctx context.Context, id int) (*model.Course, error) {
	c := &model.Course{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, description, img, version, created_at, updated_at
		 FROM courses WHERE id = $1`, id,
	).Scan(&c.ID, &c.Title, &c.Description, &c.Img, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

func (r *CourseRepository) GetAll(ctx context.Context) ([]model.Course, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, description, img, version, created_at, updated_at
		 FROM courses ORDER BY title ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := []model.Course{}
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Img, &c.Version, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (r *CourseRepository) Update(ctx context.Context, c *model.Course) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE courses SET title = $1, description = $2, img = $3,
			version = version + 1, updated_at = NOW()
		 WHERE id = $4 AND version = $5
		 RETURNING version, created_at, updated_at`,
		c.Title, c.Description, c.Img, c.ID, c.Version,
	).Scan(&c.Version, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return versionMiss(ctx, r.pool, "courses", c.ID)
	}
	return mapError(err)
}

func (r *CourseRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
