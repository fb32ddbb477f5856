package history

import (
	"context"
	"sync"

	"github.com/stemsi/onlinexam-backend/internal/model"
)

// MemoryBackend keeps attempts in process memory. Contents are lost on restart.
type MemoryBackend struct {
	mu       sync.RWMutex
	attempts []model.Attempt
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (m *MemoryBackend) Append(ctx context.Context, a model.Attempt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := requireUser(a); err != nil {
		return err
	}
	m.mu.Lock()
	m.attempts = append(m.attempts, a)
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Query(ctx context.Context, userID, examID int) ([]model.Attempt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Attempt, 0)
	for _, a := range m.attempts {
		if a.UserID == userID && a.ExamID == examID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MemoryBackend) Recent(ctx context.Context, limit int) ([]model.Attempt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []model.Attempt{}, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Attempt, 0, limit)
	for i := len(m.attempts) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.attempts[i])
	}
	return out, nil
}
