// Copyright (c) 2026 Taskrow. All rights reserved.
// Author: dev@taskrow.app

package account_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhbui/taskrow/internal/platform/sec"
	"github.com/minhbui/taskrow/internal/users/account"
	"github.com/minhbui/taskrow/internal/users/auth"
	"github.com/minhbui/taskrow/pkg/pagination"
	"github.com/minhbui/taskrow/pkg/uuid"
)

func newService(t *testing.T) (*account.Service, *auth.MemoryStore) {
	t.Helper()
	store := auth.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return account.NewService(store.Users(), logger), store
}

func seedUser(t *testing.T, store *auth.MemoryStore, username string) *auth.User {
	t.Helper()
	user := &auth.User{
		ID:           uuid.Must(),
		Email:        username + "@x.com",
		Username:     username,
		PasswordHash: "$2a$10$fakefakefakefakefakefake",
		FirstName:    "First",
		LastName:     "Last",
		Role:         sec.RoleMember,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, store.Users().Create(context.Background(), user))
	return user
}

/*
TestService_ChangeRole verifies role promotion and demotion.
*/
func TestService_ChangeRole(t *testing.T) {
	service, store := newService(t)
	ctx := context.Background()

	user := seedUser(t, store, "alice")

	promoted, err := service.ChangeRole(ctx, user.ID, sec.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, sec.RoleAdmin, promoted.Role)

	// The change is persisted, not just reflected in the return value.
	reloaded, err := service.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, sec.RoleAdmin, reloaded.Role)

	// Unknown users are a not-found error.
	_, err = service.ChangeRole(ctx, uuid.Must(), sec.RoleAdmin)
	assert.Error(t, err)
}

/*
TestService_Delete verifies idempotent deletion with token cascade.
*/
func TestService_Delete(t *testing.T) {
	service, store := newService(t)
	ctx := context.Background()

	user := seedUser(t, store, "alice")
	require.NoError(t, store.Tokens().Create(ctx, &auth.RefreshToken{
		ID:        uuid.Must(),
		UserID:    user.ID,
		Token:     "live-token",
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}))

	// 1. Deletion removes the account and its tokens.
	require.NoError(t, service.Delete(ctx, user.ID))
	assert.Equal(t, 0, store.TokenCountForUser(user.ID))

	_, err := service.Get(ctx, user.ID)
	assert.Error(t, err)

	// 2. Deleting the same user again still succeeds.
	assert.NoError(t, service.Delete(ctx, user.ID))
}

/*
TestService_UpdateProfile verifies partial updates: nil fields stay put.
*/
func TestService_UpdateProfile(t *testing.T) {
	service, store := newService(t)
	ctx := context.Background()

	user := seedUser(t, store, "alice")

	newFirst := "Updated"
	updated, err := service.UpdateProfile(ctx, user.ID, account.UpdateProfileInput{
		FirstName: &newFirst,
	})
	require.NoError(t, err)
	assert.Equal(t, "Updated", updated.FirstName)
	assert.Equal(t, "Last", updated.LastName)
}

/*
TestService_List verifies paging and the total count used for metadata.
*/
func TestService_List(t *testing.T) {
	service, store := newService(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		seedUser(t, store, name)
	}

	users, total, err := service.List(ctx, pagination.Params{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, 3, total)

	rest, _, err := service.List(ctx, pagination.Params{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}
