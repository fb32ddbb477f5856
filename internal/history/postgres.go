package history

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/onlinexam-backend/internal/model"
)

// PostgresBackend stores attempts in the exam_attempts table.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend creates a PostgresBackend. The table is created by the
// migrations in migrations/.
func NewPostgresBackend(pool *pgxpool.Pool) *PostgresBackend {
	return &PostgresBackend{pool: pool}
}

func (b *PostgresBackend) Append(ctx context.Context, a model.Attempt) error {
	if err := requireUser(a); err != nil {
		return err
	}
	_, err := b.pool.Exec(ctx,
		`INSERT INTO exam_attempts (user_id, exam_id, score, total, attempt_number, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		a.UserID, a.ExamID, a.Score, a.Total, a.AttemptNumber, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (b *PostgresBackend) Query(ctx context.Context, userID, examID int) ([]model.Attempt, error) {
	rows, err := b.pool.Query(ctx,
		`SELECT user_id, exam_id, score, total, attempt_number, created_at
		 FROM exam_attempts
		 WHERE user_id = $1 AND exam_id = $2
		 ORDER BY seq`,
		userID, examID,
	)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	return collectAttempts(rows)
}

func (b *PostgresBackend) Recent(ctx context.Context, limit int) ([]model.Attempt, error) {
	rows, err := b.pool.Query(ctx,
		`SELECT user_id, exam_id, score, total, attempt_number, created_at
		 FROM exam_attempts
		 ORDER BY seq DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent attempts: %w", err)
	}
	return collectAttempts(rows)
}

func collectAttempts(rows pgx.Rows) ([]model.Attempt, error) {
	defer rows.Close()

	out := make([]model.Attempt, 0)
	for rows.Next() {
		var a model.Attempt
		if err := rows.Scan(&a.UserID, &a.ExamID, &a.Score, &a.Total, &a.AttemptNumber, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
