package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/stemsi/onlinexam-backend/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS exam_attempts (
	seq            INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id        INTEGER NOT NULL,
	exam_id        INTEGER NOT NULL,
	score          INTEGER NOT NULL,
	total          INTEGER NOT NULL,
	attempt_number INTEGER NOT NULL,
	created_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_exam_attempts_user_exam ON exam_attempts (user_id, exam_id, seq);
`

// SQLiteBackend stores attempts in an embedded SQLite file.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend ensures the schema exists on db and returns the backend.
func NewSQLiteBackend(ctx context.Context, db *sql.DB) (*SQLiteBackend, error) {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

func (b *SQLiteBackend) Append(ctx context.Context, a model.Attempt) error {
	if err := requireUser(a); err != nil {
		return err
	}
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO exam_attempts (user_id, exam_id, score, total, attempt_number, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.UserID, a.ExamID, a.Score, a.Total, a.AttemptNumber, a.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) Query(ctx context.Context, userID, examID int) ([]model.Attempt, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT user_id, exam_id, score, total, attempt_number, created_at
		 FROM exam_attempts
		 WHERE user_id = ? AND exam_id = ?
		 ORDER BY seq`,
		userID, examID,
	)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	return scanSQLite(rows)
}

func (b *SQLiteBackend) Recent(ctx context.Context, limit int) ([]model.Attempt, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT user_id, exam_id, score, total, attempt_number, created_at
		 FROM exam_attempts
		 ORDER BY seq DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent attempts: %w", err)
	}
	return scanSQLite(rows)
}

func scanSQLite(rows *sql.Rows) ([]model.Attempt, error) {
	defer rows.Close()

	out := make([]model.Attempt, 0)
	for rows.Next() {
		var (
			a       model.Attempt
			created int64
		)
		if err := rows.Scan(&a.UserID, &a.ExamID, &a.Score, &a.Total, &a.AttemptNumber, &created); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}
