// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GYSD Contributors

// Package mocks provides testify mocks for the auth package interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/emales/gysd/internal/auth"
)

// MockUserRepository is a mock implementation of auth.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

// NewMockUserRepository creates a new MockUserRepository with expectations
// asserted on test cleanup.
func NewMockUserRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUserRepository {
	m := &MockUserRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// GetByUsername mocks auth.UserRepository.GetByUsername.
func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	args := m.Called(ctx, username)
	var user *auth.User
	if v := args.Get(0); v != nil {
		user = v.(*auth.User)
	}
	return user, args.Error(1)
}

// GetByID mocks auth.UserRepository.GetByID.
func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*auth.User, error) {
	args := m.Called(ctx, id)
	var user *auth.User
	if v := args.Get(0); v != nil {
		user = v.(*auth.User)
	}
	return user, args.Error(1)
}

// Create mocks auth.UserRepository.Create.
func (m *MockUserRepository) Create(ctx context.Context, username, passwordHash, name, email string) (int64, error) {
	args := m.Called(ctx, username, passwordHash, name, email)
	return args.Get(0).(int64), args.Error(1)
}

// TouchLastLogin mocks auth.UserRepository.TouchLastLogin.
func (m *MockUserRepository) TouchLastLogin(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// UpdatePassword mocks auth.UserRepository.UpdatePassword.
func (m *MockUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

// MockPasswordHasher is a mock implementation of auth.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a new MockPasswordHasher with expectations
// asserted on test cleanup.
func NewMockPasswordHasher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Hash mocks auth.PasswordHasher.Hash.
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

// Verify mocks auth.PasswordHasher.Verify.
func (m *MockPasswordHasher) Verify(password, hash string) (bool, error) {
	args := m.Called(password, hash)
	return args.Bool(0), args.Error(1)
}

// NeedsUpgrade mocks auth.PasswordHasher.NeedsUpgrade.
func (m *MockPasswordHasher) NeedsUpgrade(hash string) bool {
	args := m.Called(hash)
	return args.Bool(0)
}

// Compile-time interface checks.
var (
	_ auth.UserRepository = (*MockUserRepository)(nil)
	_ auth.PasswordHasher = (*MockPasswordHasher)(nil)
)
