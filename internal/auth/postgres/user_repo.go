// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GYSD Contributors

// Package postgres implements auth repositories using PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/emales/gysd/internal/auth"
)

// poolIface abstracts pgxpool.Pool for testing with pgxmock.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository implements auth.UserRepository using PostgreSQL.
// Each method performs exactly one pool operation; the pool handles
// connection checkout and return on every path.
type UserRepository struct {
	pool poolIface
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool poolIface) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByUsername retrieves an active user by username (case-sensitive).
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, name, email, is_active, updated_at
		FROM users
		WHERE username = $1 AND is_active = TRUE
	`, username)

	user, err := r.scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_USERNAME_FAILED").
			With("operation", "get user by username").
			With("username", username).
			Wrap(err)
	}
	return user, nil
}

// GetByID retrieves an active user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, name, email, is_active, updated_at
		FROM users
		WHERE id = $1 AND is_active = TRUE
	`, id)

	user, err := r.scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("id", id).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_ID_FAILED").
			With("operation", "get user by id").
			With("id", id).
			Wrap(err)
	}
	return user, nil
}

// Create stores a new active user and returns the assigned ID.
func (r *UserRepository) Create(ctx context.Context, username, passwordHash, name, email string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, password_hash, name, email, is_active, updated_at)
		VALUES ($1, $2, $3, $4, TRUE, now())
		RETURNING id
	`, username, passwordHash, name, email).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, oops.Code("USER_USERNAME_TAKEN").
				With("username", username).
				Wrap(auth.ErrUsernameTaken)
		}
		return 0, oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("username", username).
			Wrap(err)
	}
	return id, nil
}

// TouchLastLogin updates the last-login marker for a user.
// The reference schema reuses updated_at as the last-login column.
func (r *UserRepository) TouchLastLogin(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE users SET updated_at = now()
		WHERE id = $1 AND is_active = TRUE
	`, id)
	if err != nil {
		return oops.Code("USER_TOUCH_LOGIN_FAILED").
			With("operation", "touch last login").
			With("id", id).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", id).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// UpdatePassword updates only the password hash for a user.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = now()
		WHERE id = $1 AND is_active = TRUE
	`, id, passwordHash)
	if err != nil {
		return oops.Code("USER_UPDATE_PASSWORD_FAILED").
			With("operation", "update password").
			With("id", id).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", id).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// scanUser scans a single row into a User.
// Callers are responsible for handling pgx.ErrNoRows.
func (r *UserRepository) scanUser(row pgx.Row) (*auth.User, error) {
	var user auth.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Name,
		&user.Email,
		&user.IsActive,
		&user.UpdatedAt,
	)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("USER_SCAN_FAILED").
			With("operation", "scan user").
			Wrap(err)
	}
	return &user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// Compile-time interface check.
var _ auth.UserRepository = (*UserRepository)(nil)
