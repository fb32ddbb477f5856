// Package history stores submitted exam attempts for every user.
//
// A Backend holds all users' attempts. The attempt engine only ever sees a
// single user's slice of it, obtained through ForUser.
package history

import (
	"context"
	"fmt"

	"github.com/stemsi/onlinexam-backend/internal/attempt"
	"github.com/stemsi/onlinexam-backend/internal/model"
)

// Backend is the multi-user attempt collection.
type Backend interface {
	// Append stores a. a.UserID must be set.
	Append(ctx context.Context, a model.Attempt) error
	// Query returns the user's attempts for examID in insertion order.
	Query(ctx context.Context, userID, examID int) ([]model.Attempt, error)
	// Recent returns up to limit attempts across all users, newest first.
	Recent(ctx context.Context, limit int) ([]model.Attempt, error)
}

// ForUser scopes b to one user, producing the store an attempt engine writes to.
func ForUser(b Backend, userID int) attempt.HistoryStore {
	return userStore{backend: b, userID: userID}
}

type userStore struct {
	backend Backend
	userID  int
}

func (s userStore) Append(ctx context.Context, a model.Attempt) error {
	a.UserID = s.userID
	return s.backend.Append(ctx, a)
}

func (s userStore) Query(ctx context.Context, examID int) ([]model.Attempt, error) {
	return s.backend.Query(ctx, s.userID, examID)
}

func requireUser(a model.Attempt) error {
	if a.UserID <= 0 {
		return fmt.Errorf("%w: attempt without user", attempt.ErrPrecondition)
	}
	return nil
}
