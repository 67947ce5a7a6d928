// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GYSD Contributors

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emales/gysd/internal/auth"
)

var userColumns = []string{"id", "username", "password_hash", "name", "email", "is_active", "updated_at"}

func TestUserRepository_GetByUsername(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		username  string
		setupMock func(mock pgxmock.PgxPoolIface)
		want      *auth.User
		wantErr   error
		errMsg    string
	}{
		{
			name:     "successful get",
			username: "alice",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(userColumns).
					AddRow(int64(42), "alice", "$argon2id$hash", "Alice A", "a@x.com", true, now)
				mock.ExpectQuery(`SELECT id, username, password_hash, name, email, is_active, updated_at`).
					WithArgs("alice").
					WillReturnRows(rows)
			},
			want: &auth.User{
				ID:           42,
				Username:     "alice",
				PasswordHash: "$argon2id$hash",
				Name:         "Alice A",
				Email:        "a@x.com",
				IsActive:     true,
				UpdatedAt:    now,
			},
		},
		{
			name:     "unknown username",
			username: "ghost",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id, username, password_hash, name, email, is_active, updated_at`).
					WithArgs("ghost").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: auth.ErrNotFound,
		},
		{
			name:     "database error",
			username: "alice",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id, username, password_hash, name, email, is_active, updated_at`).
					WithArgs("alice").
					WillReturnError(errors.New("connection refused"))
			},
			errMsg: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			repo := NewUserRepository(mock)
			got, err := repo.GetByUsername(context.Background(), tt.username)

			switch {
			case tt.wantErr != nil:
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		id        int64
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "successful get",
			id:   42,
			setupMock: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(userColumns).
					AddRow(int64(42), "alice", "$argon2id$hash", "Alice A", "a@x.com", true, now)
				mock.ExpectQuery(`SELECT id, username, password_hash, name, email, is_active, updated_at`).
					WithArgs(int64(42)).
					WillReturnRows(rows)
			},
		},
		{
			name: "unknown id",
			id:   99,
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id, username, password_hash, name, email, is_active, updated_at`).
					WithArgs(int64(99)).
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: auth.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			repo := NewUserRepository(mock)
			got, err := repo.GetByID(context.Background(), tt.id)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.id, got.ID)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestUserRepository_Create(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantID    int64
		wantErr   error
		errMsg    string
	}{
		{
			name: "successful insert",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"id"}).AddRow(int64(7))
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("alice", "$argon2id$hash", "Alice A", "a@x.com").
					WillReturnRows(rows)
			},
			wantID: 7,
		},
		{
			name: "duplicate username maps to taken",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("alice", "$argon2id$hash", "Alice A", "a@x.com").
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
			},
			wantErr: auth.ErrUsernameTaken,
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("alice", "$argon2id$hash", "Alice A", "a@x.com").
					WillReturnError(errors.New("connection refused"))
			},
			errMsg: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			repo := NewUserRepository(mock)
			id, err := repo.Create(context.Background(), "alice", "$argon2id$hash", "Alice A", "a@x.com")

			switch {
			case tt.wantErr != nil:
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, id)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestUserRepository_TouchLastLogin(t *testing.T) {
	tests := []struct {
		name      string
		id        int64
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "successful touch",
			id:   42,
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE users SET updated_at = now\(\)`).
					WithArgs(int64(42)).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name: "unknown or inactive user",
			id:   99,
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE users SET updated_at = now\(\)`).
					WithArgs(int64(99)).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			wantErr: auth.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			repo := NewUserRepository(mock)
			err = repo.TouchLastLogin(context.Background(), tt.id)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	tests := []struct {
		name      string
		id        int64
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "successful update",
			id:   42,
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE users SET password_hash = \$2, updated_at = now\(\)`).
					WithArgs(int64(42), "$argon2id$newhash").
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name: "unknown or inactive user",
			id:   99,
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE users SET password_hash = \$2, updated_at = now\(\)`).
					WithArgs(int64(99), "$argon2id$newhash").
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			wantErr: auth.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			repo := NewUserRepository(mock)
			err = repo.UpdatePassword(context.Background(), tt.id, "$argon2id$newhash")

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestUserRepositoryInterface(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	defer mock.Close()

	var _ auth.UserRepository = NewUserRepository(mock)
}
