package service

import (
	"context"
	"fmt"

	"github.com/stemsi/onlinexam-backend/internal/history"
	"github.com/stemsi/onlinexam-backend/internal/model"
	"github.com/stemsi/onlinexam-backend/internal/repository"
)

// Bounds for how many attempts the dashboard lists.
const (
	defaultRecentAttempts = 10
	maxRecentAttempts     = 100
)

// RecentAttempt is an attempt labelled with its exam title.
type RecentAttempt struct {
	model.Attempt
	ExamTitle string `json:"exam_title"`
}

// DashboardData consolidates all metrics for the admin dashboard.
type DashboardData struct {
	Totals         repository.SummaryCounts `json:"totals"`
	RecentAttempts []RecentAttempt          `json:"recent_attempts"`
}

// DashboardService handles admin dashboard business logic.
type DashboardService struct {
	repo    *repository.DashboardRepository
	history history.Backend
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(repo *repository.DashboardRepository, backend history.Backend) *DashboardService {
	return &DashboardService{repo: repo, history: backend}
}

// GetDashboardData gathers record counts and the latest recent attempts.
// recent outside (0, 100] falls back to the default of 10.
func (s *DashboardService) GetDashboardData(ctx context.Context, recent int) (*DashboardData, error) {
	if recent <= 0 || recent > maxRecentAttempts {
		recent = defaultRecentAttempts
	}

	totals, err := s.repo.GetSummaryCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("summary counts: %w", err)
	}

	attempts, err := s.history.Recent(ctx, recent)
	if err != nil {
		return nil, fmt.Errorf("recent attempts: %w", err)
	}

	ids := make([]int, 0, len(attempts))
	seen := make(map[int]bool, len(attempts))
	for _, a := range attempts {
		if !seen[a.ExamID] {
			seen[a.ExamID] = true
			ids = append(ids, a.ExamID)
		}
	}
	titles, err := s.repo.ExamTitles(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("exam titles: %w", err)
	}

	labelled := make([]RecentAttempt, len(attempts))
	for i, a := range attempts {
		labelled[i] = RecentAttempt{Attempt: a, ExamTitle: titles[a.ExamID]}
	}

	return &DashboardData{Totals: totals, RecentAttempts: labelled}, nil
}
