// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GYSD Contributors

// Package auth provides authentication primitives for the GYSD backend.
//
// # Domain Types
//
// User is the persisted account row; UserSnapshot is the caller-safe copy
// of its identity fields captured at authentication time. The password hash
// never crosses the package boundary inside a snapshot.
//
// # Services
//
// Service coordinates credential verification, registration validation, and
// password changes over a UserRepository and a PasswordHasher. It is
// stateless: session lifecycle lives in the session package, and mapping
// failures to screens or HTTP statuses is the caller's job.
package auth
