package attempt

import (
	"context"
	"sync"

	"github.com/stemsi/onlinexam-backend/internal/model"
)

// HistoryStore is the append-only collection of attempts the engine writes to.
// Query returns only attempts for examID, earliest first.
type HistoryStore interface {
	Append(ctx context.Context, a model.Attempt) error
	Query(ctx context.Context, examID int) ([]model.Attempt, error)
}

// MemoryHistory is an in-process HistoryStore.
type MemoryHistory struct {
	mu       sync.Mutex
	attempts []model.Attempt
}

// NewMemoryHistory returns an empty MemoryHistory.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{}
}

func (m *MemoryHistory) Append(ctx context.Context, a model.Attempt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.attempts = append(m.attempts, a)
	m.mu.Unlock()
	return nil
}

func (m *MemoryHistory) Query(ctx context.Context, examID int) ([]model.Attempt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Attempt, 0)
	for _, a := range m.attempts {
		if a.ExamID == examID {
			out = append(out, a)
		}
	}
	return out, nil
}
