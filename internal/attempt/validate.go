package attempt

import (
	"fmt"

	"github.com/stemsi/onlinexam-backend/internal/model"
)

// ValidateExam checks the invariants the engine relies on: a positive id,
// a title, a positive duration, unique question ids and, for every question,
// at least two options of which exactly one equals the answer.
func ValidateExam(e *model.Exam) error {
	if e == nil {
		return fmt.Errorf("%w: nil exam", ErrMalformedExam)
	}
	if e.ID <= 0 {
		return fmt.Errorf("%w: id must be positive, got %d", ErrMalformedExam, e.ID)
	}
	if e.Title == "" {
		return fmt.Errorf("%w: exam %d has no title", ErrMalformedExam, e.ID)
	}
	if e.DurationMinutes <= 0 {
		return fmt.Errorf("%w: exam %d has non-positive duration", ErrMalformedExam, e.ID)
	}

	seen := make(map[int]struct{}, len(e.Questions))
	for i, q := range e.Questions {
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("%w: exam %d repeats question id %d", ErrMalformedExam, e.ID, q.ID)
		}
		seen[q.ID] = struct{}{}

		if len(q.Options) < 2 {
			return fmt.Errorf("%w: question %d (index %d) has fewer than two options", ErrMalformedExam, q.ID, i)
		}
		matches := 0
		for _, opt := range q.Options {
			if opt == q.Answer {
				matches++
			}
		}
		if matches != 1 {
			return fmt.Errorf("%w: question %d (index %d) answer matches %d options", ErrMalformedExam, q.ID, i, matches)
		}
	}
	return nil
}
