// Copyright (c) 2026 Taskrow. All rights reserved.
// Author: dev@taskrow.app

package auth

import (
	"context"
)

// # Credential Store Contracts
//
// The auth core depends only on these interfaces, never on a concrete
// backend. Postgres implements them for production; the in-memory store
// implements them for tests and is the substitution proof for the design.
//
// Deletion is idempotent everywhere: deleting something absent reports
// found=false and a nil error, never a failure.

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	// FindByID returns the account with the given ID, or apperr.NotFound.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail returns the account whose email matches case-insensitively
	// and exactly, or apperr.NotFound.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByUsername returns the account whose username matches
	// case-insensitively and exactly, or apperr.NotFound.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// Create persists a brand-new user account. The created user is visible
	// to lookups as soon as Create returns.
	Create(ctx context.Context, user *User) error

	// Update persists changes to the mutable profile fields (first and last
	// name, email, username).
	Update(ctx context.Context, user *User) error

	// UpdateRole replaces only the user's role.
	UpdateRole(ctx context.Context, userID string, role string) error

	// Delete hard-deletes the account and cascades to every refresh token it
	// owns, atomically. The user is absent from lookups as soon as Delete
	// returns. found=false means there was nothing to delete.
	Delete(ctx context.Context, id string) (found bool, err error)

	// List returns a page of users ordered newest-first.
	List(ctx context.Context, limit, offset int) ([]*User, error)

	// Count returns the total number of users.
	Count(ctx context.Context) (int, error)
}

// RefreshTokenRepository defines the data access contract for stored
// refresh tokens, keyed by the raw token string.
type RefreshTokenRepository interface {

	// Create persists a new refresh token row. The row is visible to
	// FindByToken as soon as Create returns.
	Create(ctx context.Context, token *RefreshToken) error

	// FindByToken returns the row holding the raw token value, or
	// apperr.NotFound.
	FindByToken(ctx context.Context, rawToken string) (*RefreshToken, error)

	// DeleteByToken removes the row holding the raw token value.
	// found=false means there was nothing to delete.
	DeleteByToken(ctx context.Context, rawToken string) (found bool, err error)

	// DeleteForUser removes every token owned by the user.
	DeleteForUser(ctx context.Context, userID string) error

	// Replace atomically deletes every token owned by token.UserID and
	// inserts the new row in the same transaction, so two racing logins can
	// never be observed half-applied.
	Replace(ctx context.Context, token *RefreshToken) error
}
