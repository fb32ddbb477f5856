package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/onlinexam-backend/internal/attempt"
	"github.com/stemsi/onlinexam-backend/internal/database"
	"github.com/stemsi/onlinexam-backend/internal/model"
)

func newSQLiteBackend(t *testing.T) *SQLiteBackend {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewSQLite(ctx, ":memory:", zerolog.Nop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	b, err := NewSQLiteBackend(ctx, db)
	if err != nil {
		t.Fatalf("NewSQLiteBackend: %v", err)
	}
	return b
}

func backends(t *testing.T) map[string]Backend {
	return map[string]Backend{
		"memory": NewMemoryBackend(),
		"sqlite": newSQLiteBackend(t),
	}
}

func TestBackendQueryFiltersByUserAndExam(t *testing.T) {
	at := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	seed := []model.Attempt{
		{UserID: 1, ExamID: 5, Score: 1, Total: 3, AttemptNumber: 1, CreatedAt: at},
		{UserID: 1, ExamID: 7, Score: 2, Total: 3, AttemptNumber: 1, CreatedAt: at},
		{UserID: 2, ExamID: 5, Score: 3, Total: 3, AttemptNumber: 1, CreatedAt: at},
		{UserID: 1, ExamID: 5, Score: 2, Total: 3, AttemptNumber: 2, CreatedAt: at.Add(time.Minute)},
	}

	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, a := range seed {
				if err := b.Append(ctx, a); err != nil {
					t.Fatalf("Append: %v", err)
				}
			}

			got, err := b.Query(ctx, 1, 5)
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("Query returned %d attempts, want 2", len(got))
			}
			if got[0].AttemptNumber != 1 || got[1].AttemptNumber != 2 {
				t.Fatalf("Query order = %+v", got)
			}
			if got[1].Score != 2 || !got[1].CreatedAt.Equal(at.Add(time.Minute)) {
				t.Fatalf("second attempt = %+v", got[1])
			}

			empty, err := b.Query(ctx, 3, 5)
			if err != nil {
				t.Fatalf("Query unknown user: %v", err)
			}
			if empty == nil || len(empty) != 0 {
				t.Fatalf("Query unknown user = %v, want empty slice", empty)
			}
		})
	}
}

func TestBackendRecentNewestFirst(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 1; i <= 4; i++ {
				a := model.Attempt{UserID: i, ExamID: 1, Score: i, AttemptNumber: 1, CreatedAt: time.Now()}
				if err := b.Append(ctx, a); err != nil {
					t.Fatalf("Append: %v", err)
				}
			}

			got, err := b.Recent(ctx, 2)
			if err != nil {
				t.Fatalf("Recent: %v", err)
			}
			if len(got) != 2 || got[0].UserID != 4 || got[1].UserID != 3 {
				t.Fatalf("Recent = %+v", got)
			}
		})
	}
}

func TestBackendRejectsAnonymousAttempt(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			err := b.Append(context.Background(), model.Attempt{ExamID: 1})
			if !errors.Is(err, attempt.ErrPrecondition) {
				t.Fatalf("Append without user: err = %v", err)
			}
		})
	}
}

func TestForUserDrivesEngine(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	exam := &model.Exam{
		ID:              5,
		Title:           "Chemistry",
		DurationMinutes: 15,
		Questions: []model.Question{
			{ID: 1, Options: []string{"A", "B"}, Answer: "A"},
		},
	}

	// Another user's attempts must not count toward this user's numbering.
	if err := b.Append(ctx, model.Attempt{UserID: 2, ExamID: 5, AttemptNumber: 1}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	e, err := attempt.NewEngine(exam, ForUser(b, 1))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if err := e.SelectAnswer(0, "A"); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	a, err := e.Submit(ctx)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if a.AttemptNumber != 1 || a.Score != 1 {
		t.Fatalf("attempt = %+v", a)
	}

	stored, _ := b.Query(ctx, 1, 5)
	if len(stored) != 1 || stored[0].UserID != 1 {
		t.Fatalf("stored = %+v", stored)
	}
}
