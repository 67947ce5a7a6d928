// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GYSD Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"unicode/utf8"

	"github.com/samber/oops"
)

// dummyPasswordHash is used when a user doesn't exist to prevent timing attacks.
// We still run password verification to make response time consistent.
// This is NOT a real credential - it's a fake hash that will never match any password.
//
//nolint:gosec // G101: This is an intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Service provides authentication operations. It holds no persistent or
// session state of its own; sessions are the caller's concern.
type Service struct {
	users  UserRepository
	hasher PasswordHasher
	logger *slog.Logger
}

// NewService creates a new Service.
func NewService(users UserRepository, hasher PasswordHasher) (*Service, error) {
	return NewServiceWithLogger(users, hasher, slog.Default())
}

// NewServiceWithLogger creates a new Service with a custom logger.
func NewServiceWithLogger(users UserRepository, hasher PasswordHasher, logger *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_INVALID_DEPS").Errorf("users repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_INVALID_DEPS").Errorf("password hasher is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_INVALID_DEPS").Errorf("logger is required")
	}
	return &Service{users: users, hasher: hasher, logger: logger}, nil
}

// Authenticate verifies a username/password pair and returns a snapshot of
// the matching user. Unknown usernames and wrong passwords both fail with
// ErrInvalidCredentials so the result does not reveal which one happened.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*UserSnapshot, error) {
	user, lookupErr := s.users.GetByUsername(ctx, username)

	// Determine which hash to verify against (real or dummy for timing attack prevention)
	var targetHash string
	var userExists bool

	if lookupErr != nil {
		if errors.Is(lookupErr, ErrNotFound) {
			// Use dummy hash - still perform verification to maintain constant time
			targetHash = dummyPasswordHash
			userExists = false
		} else {
			return nil, oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "get user by username").
				Wrap(lookupErr)
		}
	} else {
		targetHash = user.PasswordHash
		userExists = true
	}

	// Always verify. A malformed stored hash degrades to a failed
	// verification rather than an internal error surfacing to the caller.
	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		valid = false
	}

	if !userExists || !valid {
		return nil, ErrInvalidCredentials
	}

	// Transparently re-hash legacy (bcrypt) credentials with the current
	// algorithm. Best effort: login succeeds regardless.
	if s.hasher.NeedsUpgrade(user.PasswordHash) {
		if newHash, hashErr := s.hasher.Hash(password); hashErr == nil {
			if err := s.users.UpdatePassword(ctx, user.ID, newHash); err != nil {
				s.logger.Warn("password hash upgrade failed",
					"user_id", user.ID,
					"error", err,
				)
			}
		}
	}

	// Best effort: a failed timestamp update must not fail the login.
	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("last-login update failed",
			"user_id", user.ID,
			"error", err,
		)
	}

	snapshot := user.Snapshot()
	return &snapshot, nil
}

// Register validates and creates a new user account.
// Field and length checks run before the uniqueness check so obviously
// invalid input never costs a store round-trip.
func (s *Service) Register(ctx context.Context, username, password, name, email string) error {
	if username == "" || password == "" || name == "" || email == "" {
		return ErrMissingFields
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	if utf8.RuneCountInString(username) < MinUsernameLength {
		return ErrUsernameTooShort
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "check existing username").
			Wrap(err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	id, err := s.users.Create(ctx, username, hash, name, email)
	if err != nil {
		// A concurrent registration can still lose the race to the unique
		// index; report it the same as the pre-check.
		if errors.Is(err, ErrUsernameTaken) {
			return ErrUsernameTaken
		}
		return oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "insert user").
			With("username", username).
			Wrap(err)
	}

	s.logger.Info("user registered", "user_id", id, "username", username)
	return nil
}

// ValidatePasswordStrength checks a candidate password against the strength
// rules without touching the store. Usable before registration.
func (s *Service) ValidatePasswordStrength(password string) error {
	return ValidatePasswordStrength(password)
}

// ChangePassword verifies the current password for a user and replaces it
// with a new one that meets the strength rules.
func (s *Service) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrUserNotFound
		}
		return oops.Code("AUTH_CHANGE_PASSWORD_FAILED").
			With("operation", "get user by id").
			With("user_id", userID).
			Wrap(err)
	}

	valid, verifyErr := s.hasher.Verify(oldPassword, user.PasswordHash)
	if verifyErr != nil {
		valid = false
	}
	if !valid {
		return ErrIncorrectPassword
	}

	if err := ValidatePasswordStrength(newPassword); err != nil {
		return err
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return oops.Code("AUTH_CHANGE_PASSWORD_FAILED").
			With("operation", "hash new password").
			Wrap(err)
	}

	if err := s.users.UpdatePassword(ctx, userID, newHash); err != nil {
		return oops.Code("AUTH_CHANGE_PASSWORD_FAILED").
			With("operation", "update password").
			With("user_id", userID).
			Wrap(err)
	}

	s.logger.Info("password changed", "user_id", userID)
	return nil
}
