package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository errors. Services translate these into domain errors.
var (
	ErrNotFound        = errors.New("record not found")
	ErrVersionConflict = errors.New("record version conflict")
	ErrReferenced      = errors.New("record still referenced")
	ErrDuplicate       = errors.New("duplicate record")
	ErrMissingParent   = errors.New("referenced record does not exist")
)

// PostgreSQL error codes.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// mapError converts driver errors into repository errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			// Deletes of a parent report "is still referenced"; child writes
			// pointing at a missing parent report "is not present".
			if strings.Contains(pgErr.Detail, "is not present") {
				return fmt.Errorf("%w: %s", ErrMissingParent, pgErr.ConstraintName)
			}
			return fmt.Errorf("%w: %s", ErrReferenced, pgErr.ConstraintName)
		}
	}
	return err
}

// versionMiss explains an UPDATE ... WHERE id AND version that matched no row.
func versionMiss(ctx context.Context, pool *pgxpool.Pool, table string, id int) error {
	var exists bool
	if err := pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrVersionConflict
}
