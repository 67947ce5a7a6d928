// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GYSD Contributors

package auth

import (
	"context"
	"time"
	"unicode"
	"unicode/utf8"
)

// Username and password validation constraints.
const (
	MinUsernameLength = 3
	MinPasswordLength = 6
	MaxPasswordLength = 128
)

// User represents a persisted account row. PasswordHash never leaves the
// auth/storage boundary; everything handed to callers is a UserSnapshot.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Name         string
	Email        string
	IsActive     bool
	UpdatedAt    time.Time
}

// Snapshot returns the caller-safe view of the user.
func (u *User) Snapshot() UserSnapshot {
	return UserSnapshot{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Email:    u.Email,
	}
}

// UserSnapshot is an immutable copy of identity fields captured at
// authentication time. It is a cached view: changes to the underlying row
// are invisible until the next login.
type UserSnapshot struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// ValidatePasswordStrength checks a password against security requirements:
// length within [MinPasswordLength, MaxPasswordLength] and at least one
// letter and one digit. Lengths count runes, not bytes, so multibyte
// passwords are measured the way users see them.
func ValidatePasswordStrength(password string) error {
	length := utf8.RuneCountInString(password)
	if length < MinPasswordLength {
		return ErrWeakPassword
	}
	if length > MaxPasswordLength {
		return ErrWeakPassword
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrWeakPassword
	}
	return nil
}

// UserRepository manages user persistence.
type UserRepository interface {
	// GetByUsername retrieves an active user by username (case-sensitive).
	// Returns ErrNotFound if no active user has the given username.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetByID retrieves an active user by ID.
	GetByID(ctx context.Context, id int64) (*User, error)

	// Create stores a new active user and returns the assigned ID.
	// Returns ErrUsernameTaken on a username uniqueness violation.
	Create(ctx context.Context, username, passwordHash, name, email string) (int64, error)

	// TouchLastLogin updates the last-login marker for a user.
	TouchLastLogin(ctx context.Context, id int64) error

	// UpdatePassword updates only the password hash for a user.
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}
