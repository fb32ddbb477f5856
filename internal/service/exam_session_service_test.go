package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/onlinexam-backend/internal/attempt"
	"github.com/stemsi/onlinexam-backend/internal/history"
	"github.com/stemsi/onlinexam-backend/internal/model"
)

type fakeLoader struct {
	exams map[int]*model.Exam
	calls int
}

func (f *fakeLoader) Load(_ context.Context, id int) (*model.Exam, error) {
	f.calls++
	if id <= 0 {
		return nil, fmt.Errorf("%w: exam id %d", attempt.ErrPrecondition, id)
	}
	e, ok := f.exams[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrExamNotFound, id)
	}
	return e, nil
}

type brokenBackend struct{ history.Backend }

func (brokenBackend) Append(context.Context, model.Attempt) error {
	return errors.New("history offline")
}

func (brokenBackend) Query(context.Context, int, int) ([]model.Attempt, error) {
	return nil, errors.New("history offline")
}

func twoQuestionLoader() *fakeLoader {
	return &fakeLoader{exams: map[int]*model.Exam{
		1: {
			ID:              1,
			Title:           "Biology",
			DurationMinutes: 10,
			Questions: []model.Question{
				{ID: 10, QuestionText: "q1", Options: []string{"A", "B", "C"}, Answer: "A"},
				{ID: 11, QuestionText: "q2", Options: []string{"A", "B", "C"}, Answer: "B"},
			},
		},
	}}
}

func newSessions(loader ExamLoader, backend history.Backend) *ExamSessionService {
	return NewExamSessionService(loader, backend, time.Second, zerolog.Nop())
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	backend := history.NewMemoryBackend()
	s := newSessions(twoQuestionLoader(), backend)

	st, err := s.Start(ctx, 7, 1)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if st.State != attempt.StateInProgress || len(st.Answers) != 2 || st.Score != nil {
		t.Fatalf("initial state = %+v", st)
	}

	if _, err := s.SelectAnswer(7, 1, 0, "A"); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	if _, err := s.SelectAnswer(7, 1, 1, "C"); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}

	res, err := s.Submit(ctx, 7, 1)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !res.Persisted || res.Attempt.Score != 1 || res.Attempt.AttemptNumber != 1 || res.Attempt.UserID != 7 {
		t.Fatalf("result = %+v", res)
	}
	if len(res.Correct) != 2 || !res.Correct[0] || res.Correct[1] {
		t.Fatalf("correct = %v", res.Correct)
	}

	if _, err := s.Retake(7, 1); err != nil {
		t.Fatalf("Retake: %v", err)
	}
	res, err = s.Submit(ctx, 7, 1)
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	if res.Attempt.AttemptNumber != 2 || res.Attempt.Score != 0 {
		t.Fatalf("second result = %+v", res.Attempt)
	}

	hist, err := s.History(ctx, 7, 1)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 2 || hist[0].AttemptNumber != 1 || hist[1].AttemptNumber != 2 {
		t.Fatalf("history = %+v", hist)
	}
}

func TestStartResumesOpenAttempt(t *testing.T) {
	ctx := context.Background()
	loader := twoQuestionLoader()
	s := newSessions(loader, history.NewMemoryBackend())

	if _, err := s.Start(ctx, 1, 1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := s.SelectAnswer(1, 1, 1, "B"); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}

	st, err := s.Start(ctx, 1, 1)
	if err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if st.Answers[1] != "B" {
		t.Fatalf("answers = %v, want resumed attempt", st.Answers)
	}
	if loader.calls != 1 {
		t.Fatalf("loader called %d times", loader.calls)
	}
}

func TestSessionErrors(t *testing.T) {
	ctx := context.Background()
	s := newSessions(twoQuestionLoader(), history.NewMemoryBackend())

	if _, err := s.Start(ctx, 1, 99); !errors.Is(err, ErrExamNotFound) {
		t.Fatalf("Start unknown exam: err = %v", err)
	}
	if _, err := s.State(1, 1); !errors.Is(err, ErrNoSession) {
		t.Fatalf("State without session: err = %v", err)
	}
	if _, err := s.Submit(ctx, 1, 1); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Submit without session: err = %v", err)
	}

	if _, err := s.Start(ctx, 1, 1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := s.SelectAnswer(1, 1, 0, "Z"); !errors.Is(err, attempt.ErrInvalidOption) {
		t.Fatalf("invalid option: err = %v", err)
	}
	if _, err := s.SelectAnswer(1, 1, 5, "A"); !errors.Is(err, attempt.ErrQuestionIndex) {
		t.Fatalf("bad index: err = %v", err)
	}
	if _, err := s.Retake(1, 1); !errors.Is(err, attempt.ErrWrongState) {
		t.Fatalf("retake in progress: err = %v", err)
	}
}

func TestSubmitWithBrokenHistoryStillGrades(t *testing.T) {
	ctx := context.Background()
	s := newSessions(twoQuestionLoader(), brokenBackend{})

	if _, err := s.Start(ctx, 3, 1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	_, _ = s.SelectAnswer(3, 1, 0, "A")
	_, _ = s.SelectAnswer(3, 1, 1, "B")

	res, err := s.Submit(ctx, 3, 1)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Persisted || res.Warning == "" {
		t.Fatalf("result = %+v, want unpersisted with warning", res)
	}
	if res.Attempt.Score != 2 {
		t.Fatalf("score = %d", res.Attempt.Score)
	}

	st, err := s.State(3, 1)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if st.State != attempt.StateSubmitted || st.Score == nil || *st.Score != 2 {
		t.Fatalf("state = %+v", st)
	}

	if _, err := s.History(ctx, 3, 1); !errors.Is(err, attempt.ErrPersistence) {
		t.Fatalf("History: err = %v", err)
	}
}

func TestSessionsAreIsolatedPerUser(t *testing.T) {
	ctx := context.Background()
	s := newSessions(twoQuestionLoader(), history.NewMemoryBackend())

	_, _ = s.Start(ctx, 1, 1)
	_, _ = s.Start(ctx, 2, 1)
	_, _ = s.SelectAnswer(1, 1, 0, "C")

	st, _ := s.State(2, 1)
	if st.Answers[0] != "" {
		t.Fatalf("user 2 sees user 1's answer: %v", st.Answers)
	}
}

func TestConcurrentSelectAnswer(t *testing.T) {
	ctx := context.Background()
	s := newSessions(twoQuestionLoader(), history.NewMemoryBackend())
	if _, err := s.Start(ctx, 1, 1); err != nil {
		t.Fatalf("Start: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			opt := []string{"A", "B", "C"}[i%3]
			if _, err := s.SelectAnswer(1, 1, i%2, opt); err != nil {
				t.Errorf("SelectAnswer: %v", err)
			}
		}(i)
	}
	wg.Wait()

	res, err := s.Submit(ctx, 1, 1)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Attempt.AttemptNumber != 1 {
		t.Fatalf("attempt = %+v", res.Attempt)
	}
}

func TestEvictIdle(t *testing.T) {
	ctx := context.Background()
	s := newSessions(twoQuestionLoader(), history.NewMemoryBackend())

	clock := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	_, _ = s.Start(ctx, 1, 1)
	clock = clock.Add(30 * time.Minute)
	_, _ = s.Start(ctx, 2, 1)
	clock = clock.Add(45 * time.Minute)

	if n := s.EvictIdle(time.Hour); n != 1 {
		t.Fatalf("EvictIdle() = %d, want 1", n)
	}
	if _, err := s.State(1, 1); !errors.Is(err, ErrNoSession) {
		t.Fatalf("idle session survived: err = %v", err)
	}
	if _, err := s.State(2, 1); err != nil {
		t.Fatalf("active session evicted: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d", s.Len())
	}
}

func TestDiscard(t *testing.T) {
	s := newSessions(twoQuestionLoader(), history.NewMemoryBackend())
	_, _ = s.Start(context.Background(), 1, 1)

	s.Discard(1, 1)
	if _, err := s.State(1, 1); !errors.Is(err, ErrNoSession) {
		t.Fatalf("State after discard: err = %v", err)
	}
}
