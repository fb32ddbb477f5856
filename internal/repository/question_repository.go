package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/onlinexam-backend/internal/model"
)

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListByExam returns the exam's questions in taking order.
func (r *QuestionRepository) ListByExam(ctx context.Context, examID int) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, question_text, options, answer, order_num, version, created_at, updated_at
		 FROM questions WHERE exam_id = $1
		 ORDER BY order_num ASC, id ASC`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.ExamID, &q.QuestionText, &q.Options, &q.Answer,
			&q.OrderNum, &q.Version, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// GetByID retrieves a single question.
func (r *QuestionRepository) GetByID(ctx context.Context, id int) (*model.Question, error) {
	q := &model.Question{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, exam_id, question_text, options, answer, order_num, version, created_at, updated_at
		 FROM questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.ExamID, &q.QuestionText, &q.Options, &q.Answer,
		&q.OrderNum, &q.Version, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return q, nil
}

// Create inserts a question. A zero OrderNum appends it after the exam's
// current last question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO questions (exam_id, question_text, options, answer, order_num)
		 VALUES ($1, $2, $3, $4,
			CASE WHEN $5::int > 0 THEN $5::int
			     ELSE (SELECT COALESCE(MAX(order_num), 0) + 1 FROM questions WHERE exam_id = $1)
			END)
		 RETURNING id, order_num, version, created_at, updated_at`,
		q.ExamID, q.QuestionText, q.Options, q.Answer, q.OrderNum,
	).Scan(&q.ID, &q.OrderNum, &q.Version, &q.CreatedAt, &q.UpdatedAt)
	return mapError(err)
}

// Update writes q if its version still matches.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE questions SET exam_id = $1, question_text = $2, options = $3, answer = $4, order_num = $5,
			version = version + 1, updated_at = NOW()
		 WHERE id = $6 AND version = $7
		 RETURNING version, created_at, updated_at`,
		q.ExamID, q.QuestionText, q.Options, q.Answer, q.OrderNum, q.ID, q.Version,
	).Scan(&q.Version, &q.CreatedAt, &q.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return versionMiss(ctx, r.pool, "questions", q.ID)
	}
	return mapError(err)
}

// Delete removes a question and returns the exam it belonged to.
func (r *QuestionRepository) Delete(ctx context.Context, id int) (examID int, err error) {
	err = r.pool.QueryRow(ctx,
		`DELETE FROM questions WHERE id = $1 RETURNING exam_id`, id).Scan(&examID)
	return examID, mapError(err)
}
