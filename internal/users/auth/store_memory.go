// Copyright (c) 2026 Taskrow. All rights reserved.
// Author: dev@taskrow.app

package auth

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/minhbui/taskrow/internal/platform/apperr"
	"github.com/minhbui/taskrow/internal/platform/sec"
)

// MemoryStore holds users and refresh tokens in process memory behind a
// single mutex, with [MemoryStore.Users] and [MemoryStore.Tokens] exposing
// the two repository contracts over the shared state.
//
// It backs the test suites and demonstrates that the auth core depends only
// on the store interfaces: swapping Postgres for this type requires no
// change to any service or handler. The shared lock also gives it the same
// atomicity guarantees as the transactional Postgres paths (user delete
// cascades, Replace).
type MemoryStore struct {
	mu     sync.RWMutex
	users  map[string]*User         // keyed by user ID
	tokens map[string]*RefreshToken // keyed by raw token value
}

// NewMemoryStore creates an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[string]*User),
		tokens: make(map[string]*RefreshToken),
	}
}

// Users returns the UserRepository view of the store.
func (store *MemoryStore) Users() *MemoryUserRepository {
	return &MemoryUserRepository{store: store}
}

// Tokens returns the RefreshTokenRepository view of the store.
func (store *MemoryStore) Tokens() *MemoryRefreshTokenRepository {
	return &MemoryRefreshTokenRepository{store: store}
}

// TokenCountForUser reports how many token rows a user currently owns.
// Test helper for the single-live-token invariant.
func (store *MemoryStore) TokenCountForUser(userID string) int {
	store.mu.RLock()
	defer store.mu.RUnlock()

	count := 0
	for _, token := range store.tokens {
		if token.UserID == userID {
			count++
		}
	}
	return count
}

// Interface conformance.
var (
	_ UserRepository         = (*MemoryUserRepository)(nil)
	_ RefreshTokenRepository = (*MemoryRefreshTokenRepository)(nil)
)

// # User Repository View

// MemoryUserRepository implements UserRepository over a [MemoryStore].
type MemoryUserRepository struct {
	store *MemoryStore
}

// FindByID returns the account with the given ID.
func (repository *MemoryUserRepository) FindByID(_ context.Context, id string) (*User, error) {
	repository.store.mu.RLock()
	defer repository.store.mu.RUnlock()

	user, ok := repository.store.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	copied := *user
	return &copied, nil
}

// FindByEmail returns the account matching the email case-insensitively.
func (repository *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	repository.store.mu.RLock()
	defer repository.store.mu.RUnlock()

	needle := strings.ToLower(email)
	for _, user := range repository.store.users {
		if strings.ToLower(user.Email) == needle {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

// FindByUsername returns the account matching the username case-insensitively.
func (repository *MemoryUserRepository) FindByUsername(_ context.Context, username string) (*User, error) {
	repository.store.mu.RLock()
	defer repository.store.mu.RUnlock()

	needle := strings.ToLower(username)
	for _, user := range repository.store.users {
		if strings.ToLower(user.Username) == needle {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

// Create persists a brand-new user account.
func (repository *MemoryUserRepository) Create(_ context.Context, user *User) error {
	repository.store.mu.Lock()
	defer repository.store.mu.Unlock()

	copied := *user
	repository.store.users[user.ID] = &copied
	return nil
}

// Update persists changes to mutable profile fields.
func (repository *MemoryUserRepository) Update(_ context.Context, user *User) error {
	repository.store.mu.Lock()
	defer repository.store.mu.Unlock()

	existing, ok := repository.store.users[user.ID]
	if !ok {
		return apperr.NotFound("User")
	}
	existing.Email = user.Email
	existing.Username = user.Username
	existing.FirstName = user.FirstName
	existing.LastName = user.LastName
	return nil
}

// UpdateRole replaces only the user's role.
func (repository *MemoryUserRepository) UpdateRole(_ context.Context, userID string, role string) error {
	repository.store.mu.Lock()
	defer repository.store.mu.Unlock()

	existing, ok := repository.store.users[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	existing.Role = sec.Role(role)
	return nil
}

// Delete removes the account and cascades to its refresh tokens under one lock.
func (repository *MemoryUserRepository) Delete(_ context.Context, id string) (bool, error) {
	repository.store.mu.Lock()
	defer repository.store.mu.Unlock()

	if _, ok := repository.store.users[id]; !ok {
		return false, nil
	}

	delete(repository.store.users, id)
	for raw, token := range repository.store.tokens {
		if token.UserID == id {
			delete(repository.store.tokens, raw)
		}
	}
	return true, nil
}

// List returns a page of users ordered newest-first.
func (repository *MemoryUserRepository) List(_ context.Context, limit, offset int) ([]*User, error) {
	repository.store.mu.RLock()
	defer repository.store.mu.RUnlock()

	all := make([]*User, 0, len(repository.store.users))
	for _, user := range repository.store.users {
		copied := *user
		all = append(all, &copied)
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			// UUIDv7 ids are time-sortable; use them to break ties.
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return []*User{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// Count returns the total number of users.
func (repository *MemoryUserRepository) Count(_ context.Context) (int, error) {
	repository.store.mu.RLock()
	defer repository.store.mu.RUnlock()
	return len(repository.store.users), nil
}

// # Refresh Token Repository View

// MemoryRefreshTokenRepository implements RefreshTokenRepository over a
// [MemoryStore].
type MemoryRefreshTokenRepository struct {
	store *MemoryStore
}

// Create persists a new refresh token row.
func (repository *MemoryRefreshTokenRepository) Create(_ context.Context, token *RefreshToken) error {
	repository.store.mu.Lock()
	defer repository.store.mu.Unlock()

	copied := *token
	repository.store.tokens[token.Token] = &copied
	return nil
}

// FindByToken resolves a raw token value into its stored row.
func (repository *MemoryRefreshTokenRepository) FindByToken(_ context.Context, rawToken string) (*RefreshToken, error) {
	repository.store.mu.RLock()
	defer repository.store.mu.RUnlock()

	token, ok := repository.store.tokens[rawToken]
	if !ok {
		return nil, apperr.NotFound("Refresh token")
	}
	copied := *token
	return &copied, nil
}

// DeleteByToken removes a stored token row; absent rows report found=false.
func (repository *MemoryRefreshTokenRepository) DeleteByToken(_ context.Context, rawToken string) (bool, error) {
	repository.store.mu.Lock()
	defer repository.store.mu.Unlock()

	if _, ok := repository.store.tokens[rawToken]; !ok {
		return false, nil
	}
	delete(repository.store.tokens, rawToken)
	return true, nil
}

// DeleteForUser removes every token owned by the user.
func (repository *MemoryRefreshTokenRepository) DeleteForUser(_ context.Context, userID string) error {
	repository.store.mu.Lock()
	defer repository.store.mu.Unlock()

	for raw, token := range repository.store.tokens {
		if token.UserID == userID {
			delete(repository.store.tokens, raw)
		}
	}
	return nil
}

// Replace performs delete-all-for-user plus insert under one lock,
// mirroring the transactional Postgres implementation.
func (repository *MemoryRefreshTokenRepository) Replace(_ context.Context, token *RefreshToken) error {
	repository.store.mu.Lock()
	defer repository.store.mu.Unlock()

	for raw, existing := range repository.store.tokens {
		if existing.UserID == token.UserID {
			delete(repository.store.tokens, raw)
		}
	}
	copied := *token
	repository.store.tokens[token.Token] = &copied
	return nil
}
