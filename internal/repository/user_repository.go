package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/onlinexam-backend/internal/model"
)

const userColumns = `id, username, email, password_hash, role, profile_picture, status, version, created_at, updated_at`

// UserRepository handles user account data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
		&u.ProfilePicture, &u.Status, &u.Version, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

// GetByID retrieves a user by id.
func (r *UserRepository) GetByID(ctx context.Context, id int) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByIdentifier retrieves a user by username or email, case-insensitively.
func (r *UserRepository) GetByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE LOWER(username) = LOWER($1) OR LOWER(email) = LOWER($1)
		 ORDER BY id LIMIT 1`, identifier))
}

// ListPaginated returns one page of users ordered by id, plus the total count.
func (r *UserRepository) ListPaginated(ctx context.Context, limit, offset int) ([]model.User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

// Create inserts a new user and fills in the generated fields.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, role, profile_picture, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, version, created_at, updated_at`,
		u.Username, u.Email, u.PasswordHash, u.Role, u.ProfilePicture, u.Status,
	).Scan(&u.ID, &u.Version, &u.CreatedAt, &u.UpdatedAt)
	return mapError(err)
}

// Update writes u if its version still matches the stored one. An empty
// PasswordHash leaves the stored hash untouched.
func (r *UserRepository) Update(ctx context.Context, u *model.User) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE users SET
			username = $1, email = $2,
			password_hash = COALESCE(NULLIF($3, ''), password_hash),
			role = $4, profile_picture = $5, status = $6,
			version = version + 1, updated_at = NOW()
		 WHERE id = $7 AND version = $8
		 RETURNING version, created_at, updated_at`,
		u.Username, u.Email, u.PasswordHash, u.Role, u.ProfilePicture, u.Status, u.ID, u.Version,
	).Scan(&u.Version, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return versionMiss(ctx, r.pool, "users", u.ID)
	}
	return mapError(err)
}

// UpdatePassword replaces the password hash and bumps the version.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int, hash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $1, version = version + 1, updated_at = NOW() WHERE id = $2`,
		hash, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user. Their attempt history goes with them.
func (r *UserRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountAdmins returns the number of active administrators.
func (r *UserRepository) CountAdmins(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE role = $1 AND status = $2`,
		model.RoleAdmin, model.UserStatusActive).Scan(&n)
	return n, err
}
