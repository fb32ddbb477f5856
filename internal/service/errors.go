package service

import (
	"errors"
	"fmt"

	"github.com/stemsi/onlinexam-backend/internal/attempt"
	"github.com/stemsi/onlinexam-backend/internal/repository"
)

// Domain errors shared by the catalog services.
var (
	ErrNotFound         = attempt.ErrNotFound
	ErrExamNotFound     = fmt.Errorf("exam %w", attempt.ErrNotFound)
	ErrVersionConflict  = errors.New("record was modified concurrently")
	ErrDependencyExists = errors.New("record is still referenced")
	ErrDuplicate        = errors.New("record already exists")
	ErrInvalidReference = errors.New("referenced record does not exist")
)

// translate maps repository errors onto domain errors, keeping the cause.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, repository.ErrVersionConflict):
		return fmt.Errorf("%w: %w", ErrVersionConflict, err)
	case errors.Is(err, repository.ErrReferenced):
		return fmt.Errorf("%w: %w", ErrDependencyExists, err)
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	case errors.Is(err, repository.ErrMissingParent):
		return fmt.Errorf("%w: %w", ErrInvalidReference, err)
	default:
		return err
	}
}

// normalizePage clamps page and perPage to sane bounds.
func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}
