// Package attempt holds the exam-taking core: answer capture, grading and
// the attempt history written on every submission.
package attempt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stemsi/onlinexam-backend/internal/model"
)

// State is the lifecycle position of an Engine.
type State string

const (
	StateInProgress State = "IN_PROGRESS"
	StateSubmitted  State = "SUBMITTED"
)

// DefaultHistoryTimeout bounds every history read and write.
const DefaultHistoryTimeout = 5 * time.Second

// Engine holds the in-memory state of one exam attempt for one session.
//
// An Engine is not safe for concurrent use. It is owned by a single
// session; callers sharing one must serialise access themselves.
type Engine struct {
	exam    *model.Exam
	store   HistoryStore
	now     func() time.Time
	timeout time.Duration

	state    State
	answers  []string
	score    int
	scored   bool
	attempts []model.Attempt
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the attempt timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithTimeout overrides the history call timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// NewEngine starts an attempt on exam in the InProgress state with an empty
// answer set.
func NewEngine(exam *model.Exam, store HistoryStore, opts ...Option) (*Engine, error) {
	if exam == nil {
		return nil, fmt.Errorf("%w: no exam loaded", ErrPrecondition)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: no history store", ErrPrecondition)
	}

	e := &Engine{
		exam:    exam,
		store:   store,
		now:     time.Now,
		timeout: DefaultHistoryTimeout,
		state:   StateInProgress,
		answers: make([]string, len(exam.Questions)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Exam returns the exam this engine grades against.
func (e *Engine) Exam() *model.Exam { return e.exam }

// State returns the current lifecycle state.
func (e *Engine) State() State { return e.state }

// Answers returns a copy of the answer set. Unanswered slots are empty.
func (e *Engine) Answers() []string {
	out := make([]string, len(e.answers))
	copy(out, e.answers)
	return out
}

// Score returns the score of the last submission, if one is displayed.
func (e *Engine) Score() (int, bool) { return e.score, e.scored }

// Attempts returns the attempts recorded by this engine, earliest first.
func (e *Engine) Attempts() []model.Attempt {
	out := make([]model.Attempt, len(e.attempts))
	copy(out, e.attempts)
	return out
}

// SelectAnswer records option as the answer for the question at index,
// replacing any earlier selection.
func (e *Engine) SelectAnswer(index int, option string) error {
	if e.state != StateInProgress {
		return fmt.Errorf("%w: select answer while %s", ErrWrongState, e.state)
	}
	if index < 0 || index >= len(e.exam.Questions) {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrQuestionIndex, index, len(e.exam.Questions))
	}

	q := e.exam.Questions[index]
	for _, opt := range q.Options {
		if opt == option {
			e.answers[index] = option
			return nil
		}
	}
	return fmt.Errorf("%w: question %d has no option %q", ErrInvalidOption, q.ID, option)
}

// Submit grades the answer set, moves to Submitted and appends the attempt
// to the history store.
//
// The transition and the score never depend on persistence: when the
// history read or write fails, the attempt is still returned together with
// an error wrapping ErrPersistence.
func (e *Engine) Submit(ctx context.Context) (model.Attempt, error) {
	if e.state != StateInProgress {
		return model.Attempt{}, fmt.Errorf("%w: submit while %s", ErrWrongState, e.state)
	}

	score := Score(e.exam.Questions, e.answers)
	e.state = StateSubmitted
	e.score, e.scored = score, true

	prior, queryErr := e.priorAttempts(ctx)
	a := model.Attempt{
		ExamID:        e.exam.ID,
		Score:         score,
		Total:         len(e.exam.Questions),
		AttemptNumber: prior + 1,
		CreatedAt:     e.now(),
	}
	e.attempts = append(e.attempts, a)

	appendErr := e.append(ctx, a)
	return a, errors.Join(queryErr, appendErr)
}

// Retake clears the answer set and the displayed score and returns to
// InProgress. No history is written until the next Submit.
func (e *Engine) Retake() error {
	if e.state != StateSubmitted {
		return fmt.Errorf("%w: retake while %s", ErrWrongState, e.state)
	}
	e.state = StateInProgress
	e.answers = make([]string, len(e.exam.Questions))
	e.score, e.scored = 0, false
	return nil
}

// priorAttempts counts stored attempts for this exam. On failure it falls
// back to the attempts this engine has seen.
func (e *Engine) priorAttempts(ctx context.Context) (int, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	stored, err := e.store.Query(ctx, e.exam.ID)
	if err != nil {
		return len(e.attempts), fmt.Errorf("%w: query exam %d: %w", ErrPersistence, e.exam.ID, err)
	}
	return len(stored), nil
}

func (e *Engine) append(ctx context.Context, a model.Attempt) error {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	if err := e.store.Append(ctx, a); err != nil {
		return fmt.Errorf("%w: append exam %d attempt %d: %w", ErrPersistence, a.ExamID, a.AttemptNumber, err)
	}
	return nil
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.timeout)
}
