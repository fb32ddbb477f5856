package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DashboardRepository handles admin dashboard data access.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// SummaryCounts holds the record totals shown on the dashboard.
type SummaryCounts struct {
	Users     int `json:"users"`
	Courses   int `json:"courses"`
	Subjects  int `json:"subjects"`
	Exams     int `json:"exams"`
	Questions int `json:"questions"`
}

// GetSummaryCounts retrieves the high-level metrics for the dashboard.
func (r *DashboardRepository) GetSummaryCounts(ctx context.Context) (SummaryCounts, error) {
	var s SummaryCounts
	err := r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM courses),
			(SELECT COUNT(*) FROM subjects),
			(SELECT COUNT(*) FROM exams),
			(SELECT COUNT(*) FROM questions)`,
	).Scan(&s.Users, &s.Courses, &s.Subjects, &s.Exams, &s.Questions)
	return s, err
}

// ExamTitles maps exam ids to titles for labelling recent attempts.
func (r *DashboardRepository) ExamTitles(ctx context.Context, ids []int) (map[int]string, error) {
	titles := make(map[int]string, len(ids))
	if len(ids) == 0 {
		return titles, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT id, title FROM exams WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id    int
			title string
		)
		if err := rows.Scan(&id, &title); err != nil {
			return nil, err
		}
		titles[id] = title
	}
	return titles, rows.Err()
}
