// Copyright (c) 2026 Taskrow. All rights reserved.
// Author: dev@taskrow.app

package auth

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/minhbui/taskrow/internal/platform/apperr"
	"github.com/minhbui/taskrow/internal/platform/sec"
	"github.com/minhbui/taskrow/pkg/uuid"
)

// TokenIssuer abstracts JWT generation and verification for the auth flows.
// [sec.TokenService] is the production implementation.
type TokenIssuer interface {
	GenerateAccessToken(userID string, timeToLive time.Duration) (string, error)
	GenerateRefreshToken(userID string, timeToLive time.Duration) (string, error)
	Verify(tokenString string, expectedKind sec.TokenKind) (*sec.TokenClaims, error)
}

// Service orchestrates registration, login, token refresh, and logout on top
// of the credential store and the token issuer.
type Service struct {
	users  UserRepository
	tokens RefreshTokenRepository
	issuer TokenIssuer
	logger *slog.Logger
}

// NewService wires the auth service with its dependencies.
func NewService(users UserRepository, tokens RefreshTokenRepository, issuer TokenIssuer, logger *slog.Logger) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		issuer: issuer,
		logger: logger,
	}
}

// RegisterInput carries the already-validated registration payload.
type RegisterInput struct {
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
}

// LoginInput carries the login payload.
type LoginInput struct {
	Email    string
	Password string
}

// Session is the outcome of a successful register or login: the user, a
// fresh access token for the response body, and a fresh refresh token bound
// for the cookie.
type Session struct {
	User         *User
	AccessToken  string
	RefreshToken string
}

// Register creates a new user account and opens a session for it.
//
// Duplicate email or username checks are case-insensitive and reported as
// conflicts before the (slow) password hash is computed. The new account
// always starts with the member role; promotion is a separate admin
// operation.
func (service *Service) Register(ctx context.Context, input RegisterInput) (*Session, error) {

	// ── 1. Uniqueness checks ──
	if _, err := service.users.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperr.Conflict("Email is already registered")
	} else if !isNotFound(err) {
		return nil, err
	}

	if _, err := service.users.FindByUsername(ctx, input.Username); err == nil {
		return nil, apperr.Conflict("Username is already taken")
	} else if !isNotFound(err) {
		return nil, err
	}

	// ── 2. Hash and persist ──
	passwordHash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &User{
		ID:           uuid.Must(),
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: passwordHash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         sec.RoleMember,
		CreatedAt:    time.Now().UTC(),
	}

	if err := service.users.Create(ctx, user); err != nil {
		return nil, err
	}

	// ── 3. Open the session ──
	session, err := service.openSession(ctx, user, false)
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return session, nil
}

// Login verifies credentials and opens a fresh session.
//
// Every failure — unknown email or wrong password — returns the identical
// 401 so callers cannot probe which emails exist. Opening the session
// atomically replaces any refresh tokens from earlier logins, so a user
// holds at most one live refresh token.
func (service *Service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	user, err := service.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.Unauthorized(InvalidCredentialsMessage)
		}
		return nil, err
	}

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized(InvalidCredentialsMessage)
	}

	session, err := service.openSession(ctx, user, true)
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))

	return session, nil
}

// Refresh exchanges a valid refresh token for a new access token.
//
// The stored row and the JWT itself are checked independently: a row past
// its expiry is deleted on sight, and a token that fails signature or kind
// verification is rejected even if a matching row exists. The refresh token
// is not rotated on this path; the caller keeps using the same cookie until
// it expires or is logged out.
func (service *Service) Refresh(ctx context.Context, rawToken string) (string, error) {

	// ── 1. Stored row lookup and expiry ──
	stored, err := service.tokens.FindByToken(ctx, rawToken)
	if err != nil {
		if isNotFound(err) {
			return "", apperr.Unauthorized("Invalid or expired refresh token")
		}
		return "", err
	}

	if stored.Expired(time.Now()) {
		if _, err := service.tokens.DeleteByToken(ctx, rawToken); err != nil {
			service.logger.WarnContext(ctx, "failed to delete expired refresh token",
				slog.String("user_id", stored.UserID),
				slog.Any("error", err),
			)
		}
		return "", apperr.Unauthorized("Invalid or expired refresh token")
	}

	// ── 2. Independent JWT verification ──
	claims, err := service.issuer.Verify(rawToken, sec.KindRefresh)
	if err != nil {
		return "", apperr.Unauthorized("Invalid or expired refresh token")
	}

	// ── 3. The user must still exist ──
	user, err := service.users.FindByID(ctx, claims.UserID())
	if err != nil {
		if isNotFound(err) {
			return "", apperr.Unauthorized("Invalid or expired refresh token")
		}
		return "", err
	}

	accessToken, err := service.issuer.GenerateAccessToken(user.ID, AccessTokenTTL)
	if err != nil {
		return "", apperr.Internal(err)
	}

	return accessToken, nil
}

// Logout revokes the presented refresh token and, defensively, every other
// token the authenticated user owns. It always succeeds: logging out with an
// already-revoked or absent cookie is not an error.
func (service *Service) Logout(ctx context.Context, identity *sec.Identity, rawToken string) error {
	if rawToken != "" {
		if _, err := service.tokens.DeleteByToken(ctx, rawToken); err != nil {
			service.logger.WarnContext(ctx, "failed to delete refresh token on logout",
				slog.String("user_id", identity.UserID),
				slog.Any("error", err),
			)
		}
	}

	if err := service.tokens.DeleteForUser(ctx, identity.UserID); err != nil {
		service.logger.WarnContext(ctx, "failed to delete user refresh tokens on logout",
			slog.String("user_id", identity.UserID),
			slog.Any("error", err),
		)
	}

	service.logger.InfoContext(ctx, "user logged out", slog.String("user_id", identity.UserID))

	return nil
}

// IdentityByID loads the current identity for a user ID. The authentication
// middleware calls this on every authenticated request so that deleted or
// demoted users are never trusted on stale token claims.
func (service *Service) IdentityByID(ctx context.Context, userID string) (*sec.Identity, error) {
	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Identity(), nil
}

// openSession issues the access and refresh token pair for a user and
// persists the refresh token row. When replace is set the new row atomically
// supplants every earlier token the user owned.
func (service *Service) openSession(ctx context.Context, user *User, replace bool) (*Session, error) {
	accessToken, err := service.issuer.GenerateAccessToken(user.ID, AccessTokenTTL)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	refreshToken, err := service.issuer.GenerateRefreshToken(user.ID, RefreshTokenTTL)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	currentTime := time.Now().UTC()
	row := &RefreshToken{
		ID:        uuid.Must(),
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: currentTime.Add(RefreshTokenTTL),
		CreatedAt: currentTime,
	}

	if replace {
		err = service.tokens.Replace(ctx, row)
	} else {
		err = service.tokens.Create(ctx, row)
	}
	if err != nil {
		return nil, err
	}

	return &Session{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// isNotFound reports whether the error is the store's not-found sentinel.
func isNotFound(err error) bool {
	appError := apperr.As(err)
	return appError != nil && appError.HTTPStatus == http.StatusNotFound
}
