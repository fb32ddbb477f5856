package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/onlinexam-backend/internal/attempt"
	"github.com/stemsi/onlinexam-backend/internal/history"
	"github.com/stemsi/onlinexam-backend/internal/model"
)

// ErrNoSession is returned when the user has no attempt open on the exam.
var ErrNoSession = errors.New("no attempt in progress")

// ExamLoader fetches an exam with its ordered questions.
type ExamLoader interface {
	Load(ctx context.Context, id int) (*model.Exam, error)
}

// AttemptState is the caller's view of an open attempt.
type AttemptState struct {
	Exam     model.ExamPayload `json:"exam"`
	State    attempt.State     `json:"state"`
	Answers  []string          `json:"answers"`
	Score    *int              `json:"score"`
	Attempts []model.Attempt   `json:"attempts"`
}

// SubmitResult reports a graded submission. Persisted is false when the
// score could not be written to the history store.
type SubmitResult struct {
	Attempt   model.Attempt `json:"attempt"`
	Correct   []bool        `json:"correct"`
	Persisted bool          `json:"persisted"`
	Warning   string        `json:"warning,omitempty"`
}

type sessionKey struct {
	userID int
	examID int
}

type sessionEntry struct {
	mu       sync.Mutex
	engine   *attempt.Engine
	lastUsed time.Time
}

// ExamSessionService keeps one attempt engine per (user, exam) pair and
// serialises access to each engine.
type ExamSessionService struct {
	loader  ExamLoader
	history history.Backend
	timeout time.Duration
	now     func() time.Time
	log     zerolog.Logger

	mu       sync.Mutex
	sessions map[sessionKey]*sessionEntry
}

// NewExamSessionService creates a new ExamSessionService. historyTimeout
// bounds each history call made while submitting.
func NewExamSessionService(loader ExamLoader, backend history.Backend, historyTimeout time.Duration, log zerolog.Logger) *ExamSessionService {
	return &ExamSessionService{
		loader:   loader,
		history:  backend,
		timeout:  historyTimeout,
		now:      time.Now,
		log:      log.With().Str("component", "exam_session_service").Logger(),
		sessions: make(map[sessionKey]*sessionEntry),
	}
}

// NewEngine loads an exam and returns a fresh engine writing to the user's
// history. The caller owns the engine.
func (s *ExamSessionService) NewEngine(ctx context.Context, userID, examID int) (*attempt.Engine, error) {
	exam, err := s.loader.Load(ctx, examID)
	if err != nil {
		return nil, err
	}
	return attempt.NewEngine(exam, history.ForUser(s.history, userID), attempt.WithTimeout(s.timeout))
}

// Start opens an attempt, or returns the one already open.
func (s *ExamSessionService) Start(ctx context.Context, userID, examID int) (*AttemptState, error) {
	key := sessionKey{userID: userID, examID: examID}

	if entry := s.lookup(key); entry != nil {
		entry.mu.Lock()
		defer entry.mu.Unlock()
		entry.lastUsed = s.now()
		return snapshot(entry.engine), nil
	}

	engine, err := s.NewEngine(ctx, userID, examID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	entry, exists := s.sessions[key]
	if !exists {
		entry = &sessionEntry{engine: engine}
		s.sessions[key] = entry
	}
	s.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.lastUsed = s.now()

	if !exists {
		s.log.Info().Int("user_id", userID).Int("exam_id", examID).Msg("Attempt started")
	}
	return snapshot(entry.engine), nil
}

// State returns the open attempt.
func (s *ExamSessionService) State(userID, examID int) (*AttemptState, error) {
	var st *AttemptState
	err := s.with(userID, examID, func(e *attempt.Engine) error {
		st = snapshot(e)
		return nil
	})
	return st, err
}

// SelectAnswer records option for the question at index.
func (s *ExamSessionService) SelectAnswer(userID, examID, index int, option string) (*AttemptState, error) {
	var st *AttemptState
	err := s.with(userID, examID, func(e *attempt.Engine) error {
		if err := e.SelectAnswer(index, option); err != nil {
			return err
		}
		st = snapshot(e)
		return nil
	})
	return st, err
}

// Submit grades the open attempt. A history failure does not fail the
// submission; it is reported through SubmitResult.Persisted.
func (s *ExamSessionService) Submit(ctx context.Context, userID, examID int) (*SubmitResult, error) {
	var res *SubmitResult
	err := s.with(userID, examID, func(e *attempt.Engine) error {
		a, err := e.Submit(ctx)
		if err != nil && !errors.Is(err, attempt.ErrPersistence) {
			return err
		}

		a.UserID = userID
		res = &SubmitResult{
			Attempt:   a,
			Correct:   attempt.Grade(e.Exam().Questions, e.Answers()),
			Persisted: err == nil,
		}
		if err != nil {
			res.Warning = "Your score could not be saved to your history."
			s.log.Warn().Err(err).
				Int("user_id", userID).
				Int("exam_id", examID).
				Int("score", a.Score).
				Msg("Attempt graded but not persisted")
			return nil
		}

		s.log.Info().
			Int("user_id", userID).
			Int("exam_id", examID).
			Int("score", a.Score).
			Int("attempt_number", a.AttemptNumber).
			Msg("Attempt submitted")
		return nil
	})
	return res, err
}

// Retake clears a submitted attempt for another try.
func (s *ExamSessionService) Retake(userID, examID int) (*AttemptState, error) {
	var st *AttemptState
	err := s.with(userID, examID, func(e *attempt.Engine) error {
		if err := e.Retake(); err != nil {
			return err
		}
		st = snapshot(e)
		return nil
	})
	return st, err
}

// Discard closes the attempt without recording anything.
func (s *ExamSessionService) Discard(userID, examID int) {
	s.mu.Lock()
	delete(s.sessions, sessionKey{userID: userID, examID: examID})
	s.mu.Unlock()
}

// History returns the user's attempts on an exam in submission order.
func (s *ExamSessionService) History(ctx context.Context, userID, examID int) ([]model.Attempt, error) {
	attempts, err := s.history.Query(ctx, userID, examID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", attempt.ErrPersistence, err)
	}
	return attempts, nil
}

// EvictIdle drops sessions unused for longer than ttl and returns how many
// were removed.
func (s *ExamSessionService) EvictIdle(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for key, entry := range s.sessions {
		// Skip entries busy with a request; they are not idle.
		if !entry.mu.TryLock() {
			continue
		}
		if entry.lastUsed.Before(cutoff) {
			delete(s.sessions, key)
			evicted++
		}
		entry.mu.Unlock()
	}
	return evicted
}

// Len returns the number of open sessions.
func (s *ExamSessionService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *ExamSessionService) lookup(key sessionKey) *sessionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[key]
}

func (s *ExamSessionService) with(userID, examID int, fn func(*attempt.Engine) error) error {
	entry := s.lookup(sessionKey{userID: userID, examID: examID})
	if entry == nil {
		return ErrNoSession
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.lastUsed = s.now()
	return fn(entry.engine)
}

func snapshot(e *attempt.Engine) *AttemptState {
	st := &AttemptState{
		Exam:     e.Exam().Payload(),
		State:    e.State(),
		Answers:  e.Answers(),
		Attempts: e.Attempts(),
	}
	if score, ok := e.Score(); ok {
		st.Score = &score
	}
	return st
}
