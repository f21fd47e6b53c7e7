// Copyright (c) 2026 Taskrow. All rights reserved.
// Author: dev@taskrow.app

/*
Package account provides user directory management on top of the auth domain.

It covers the administrative surface (listing, inspecting, role changes, and
deletion of any account) plus self-service profile updates. Administrative
endpoints are gated by the admin role; the package itself holds no role
logic beyond what the route guards enforce.
*/
package account

import (
	"context"
	"log/slog"

	"github.com/minhbui/taskrow/internal/platform/sec"
	"github.com/minhbui/taskrow/internal/users/auth"
	"github.com/minhbui/taskrow/pkg/pagination"
)

// # Service Layer

// Service orchestrates user directory operations over the auth domain's
// credential store.
type Service struct {
	users  auth.UserRepository
	logger *slog.Logger
}

// NewService constructs a new [Service].
func NewService(users auth.UserRepository, logger *slog.Logger) *Service {
	return &Service{
		users:  users,
		logger: logger,
	}
}

// List returns one page of users ordered newest-first, plus the total count
// for pagination metadata.
func (service *Service) List(ctx context.Context, params pagination.Params) ([]*auth.User, int, error) {
	users, err := service.users.List(ctx, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, err
	}

	total, err := service.users.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// Get retrieves a single user by ID.
func (service *Service) Get(ctx context.Context, userID string) (*auth.User, error) {
	return service.users.FindByID(ctx, userID)
}

// ChangeRole assigns a new role to the user and returns the updated record.
func (service *Service) ChangeRole(ctx context.Context, userID string, role sec.Role) (*auth.User, error) {
	if err := service.users.UpdateRole(ctx, userID, string(role)); err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "user role changed",
		slog.String("user_id", userID),
		slog.String("role", string(role)),
	)

	return service.users.FindByID(ctx, userID)
}

// Delete removes the user account and, through the store's cascade, every
// refresh token it owns. Deleting an absent user is not an error.
func (service *Service) Delete(ctx context.Context, userID string) error {
	found, err := service.users.Delete(ctx, userID)
	if err != nil {
		return err
	}

	if found {
		service.logger.InfoContext(ctx, "user deleted", slog.String("user_id", userID))
	}

	return nil
}

// UpdateProfileInput defines the mutable subset of profile fields. Nil
// pointers leave the field unchanged.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
}

// UpdateProfile applies a partial update to the caller's own profile and
// returns the updated record.
func (service *Service) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*auth.User, error) {
	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}

	if err := service.users.Update(ctx, user); err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "user profile updated", slog.String("user_id", userID))

	return user, nil
}
