// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GYSD Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Sentinel failures returned by the authentication service. Callers branch
// with errors.Is; the messages are safe to surface to clients. Plain
// sentinels, not oops values: oops context is added by wrapping at return
// sites, so errors.Is resolves through the chain instead of matching any
// coded error.
var (
	// ErrInvalidCredentials covers both unknown-username and wrong-password
	// so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrMissingFields is returned when a registration field is empty.
	ErrMissingFields = errors.New("all fields are required")

	// ErrWeakPassword is returned when a password fails length or content rules.
	ErrWeakPassword = errors.New("password does not meet security requirements")

	// ErrUsernameTooShort is returned when a username is below the minimum length.
	ErrUsernameTooShort = errors.New("username must be at least 3 characters")

	// ErrUsernameTaken is returned when registering a username that already exists.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrUserNotFound is returned by change-password when the user id is unknown.
	ErrUserNotFound = errors.New("user not found")

	// ErrIncorrectPassword is returned by change-password when the current
	// password does not verify.
	ErrIncorrectPassword = errors.New("current password is incorrect")
)
