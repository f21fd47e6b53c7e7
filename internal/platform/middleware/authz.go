// Copyright (c) 2026 Taskrow. All rights reserved.
// Author: dev@taskrow.app

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/minhbui/taskrow/internal/platform/apperr"
	"github.com/minhbui/taskrow/internal/platform/constants"
	"github.com/minhbui/taskrow/internal/platform/ctxutil"
	"github.com/minhbui/taskrow/internal/platform/respond"
	"github.com/minhbui/taskrow/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify access tokens.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from [sec.TokenService],
// allowing us to inject stubs during unit testing.
type TokenVerifier interface {
	Verify(tokenStr string, kind sec.TokenKind) (*sec.TokenClaims, error)
}

// UserSource resolves a verified user ID into a request [sec.Identity].
//
// The middleware loads the user fresh from the credential store on every
// request: a token that outlives its user (deleted account) must fail
// authentication, and role changes must take effect without reissuing tokens.
type UserSource interface {
	IdentityByID(ctx context.Context, userID string) (*sec.Identity, error)
}

// Authenticate extracts and verifies the bearer token from the Authorization header.
//
// # State machine (per request)
//
//  1. No header               -> anonymous; downstream guards decide.
//  2. Malformed header        -> 401.
//  3. Invalid/expired token   -> 401.
//  4. User no longer exists   -> 401.
//  5. Valid                   -> Identity attached to context, proceed.
//
// Every rejection is the same generic 401; internal detail never leaks.
func Authenticate(verifier TokenVerifier, users UserSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get("Authorization")

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			// The scheme prefix must match literally, followed by the token.
			if !strings.HasPrefix(authHeader, constants.BearerScheme) {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}
			tokenStr := authHeader[len(constants.BearerScheme):]
			if tokenStr == "" || strings.ContainsRune(tokenStr, ' ') {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			claims, err := verifier.Verify(tokenStr, sec.KindAccess)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			// ── 4. Identity Resolution ────────────────────────────────────────
			// A valid signature is not enough: the referenced user must still
			// exist. Any store failure collapses to the same generic 401.
			identity, err := users.IdentityByID(request.Context(), claims.UserID())
			if err != nil || identity == nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			// ── 5. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithIdentity(request.Context(), identity)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		identity := ctxutil.GetIdentity(request.Context())
		if identity == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRoles blocks requests whose identity's role is not in the allowed set.
//
// # Usage
//
// Must be registered AFTER [Authenticate]. It implies [RequireAuth]: a request
// reaching this guard without an identity gets 401 (not 403), which also keeps
// a mis-ordered chain a graceful failure.
func RequireRoles(allowed ...sec.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			identity := ctxutil.GetIdentity(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if identity == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			// ── 2. Authorization Check ────────────────────────────────────────
			if !identity.Role.In(allowed...) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// RequireAdmin is the ADMIN-only specialization of [RequireRoles].
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRoles(sec.RoleAdmin)(next)
}
