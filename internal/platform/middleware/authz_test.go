// Copyright (c) 2026 Taskrow. All rights reserved.
// Author: dev@taskrow.app

package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhbui/taskrow/internal/platform/apperr"
	"github.com/minhbui/taskrow/internal/platform/ctxutil"
	"github.com/minhbui/taskrow/internal/platform/middleware"
	"github.com/minhbui/taskrow/internal/platform/sec"
)

// stubUserSource serves a fixed identity set keyed by user ID.
type stubUserSource struct {
	identities map[string]*sec.Identity
}

func (s *stubUserSource) IdentityByID(_ context.Context, userID string) (*sec.Identity, error) {
	identity, ok := s.identities[userID]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return identity, nil
}

// okHandler records whether the request made it through the middleware chain
// and which identity it carried.
func okHandler(reached *bool, identity **sec.Identity) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		*reached = true
		if identity != nil {
			*identity = ctxutil.GetIdentity(request.Context())
		}
		writer.WriteHeader(http.StatusOK)
	})
}

func newVerifier(t *testing.T) *sec.TokenService {
	t.Helper()
	service, err := sec.NewTokenService("authz-test-secret", "taskrow.test")
	require.NoError(t, err)
	return service
}

/*
TestAuthenticate_Anonymous verifies that a request without an Authorization
header passes through without an identity.
*/
func TestAuthenticate_Anonymous(t *testing.T) {
	verifier := newVerifier(t)
	users := &stubUserSource{identities: map[string]*sec.Identity{}}

	reached := false
	var identity *sec.Identity
	handler := middleware.Authenticate(verifier, users)(okHandler(&reached, &identity))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.True(t, reached)
	assert.Nil(t, identity)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

/*
TestAuthenticate_MalformedHeader verifies that every malformed Authorization
header is rejected with 401, never a 500.
*/
func TestAuthenticate_MalformedHeader(t *testing.T) {
	verifier := newVerifier(t)
	users := &stubUserSource{identities: map[string]*sec.Identity{}}

	tests := []struct {
		name   string
		header string
	}{
		{"wrong_scheme", "Basic dXNlcjpwYXNz"},
		{"no_token", "Bearer "},
		{"lowercase_scheme", "bearer sometoken"},
		{"token_with_space", "Bearer two parts"},
		{"garbage_token", "Bearer total-garbage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached := false
			handler := middleware.Authenticate(verifier, users)(okHandler(&reached, nil))

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			request.Header.Set("Authorization", tt.header)
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.False(t, reached)
			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		})
	}
}

/*
TestAuthenticate_ValidToken verifies the happy path: a valid access token
attaches the freshly loaded identity to the request context.
*/
func TestAuthenticate_ValidToken(t *testing.T) {
	verifier := newVerifier(t)
	users := &stubUserSource{identities: map[string]*sec.Identity{
		"user-1": {UserID: "user-1", Username: "alice", Role: sec.RoleMember},
	}}

	token, err := verifier.GenerateAccessToken("user-1", time.Minute)
	require.NoError(t, err)

	reached := false
	var identity *sec.Identity
	handler := middleware.Authenticate(verifier, users)(okHandler(&reached, &identity))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer "+token)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.True(t, reached)
	require.NotNil(t, identity)
	assert.Equal(t, "user-1", identity.UserID)
	assert.Equal(t, sec.RoleMember, identity.Role)
}

/*
TestAuthenticate_DeletedUser verifies that a well-signed token whose user no
longer exists is rejected with 401.
*/
func TestAuthenticate_DeletedUser(t *testing.T) {
	verifier := newVerifier(t)
	users := &stubUserSource{identities: map[string]*sec.Identity{}}

	token, err := verifier.GenerateAccessToken("ghost", time.Minute)
	require.NoError(t, err)

	reached := false
	handler := middleware.Authenticate(verifier, users)(okHandler(&reached, nil))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer "+token)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

/*
TestAuthenticate_RefreshTokenRejected verifies that a refresh token cannot be
used in the Authorization header.
*/
func TestAuthenticate_RefreshTokenRejected(t *testing.T) {
	verifier := newVerifier(t)
	users := &stubUserSource{identities: map[string]*sec.Identity{
		"user-1": {UserID: "user-1", Role: sec.RoleMember},
	}}

	refreshToken, err := verifier.GenerateRefreshToken("user-1", time.Minute)
	require.NoError(t, err)

	reached := false
	handler := middleware.Authenticate(verifier, users)(okHandler(&reached, nil))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer "+refreshToken)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

/*
TestRequireAuth verifies that the guard distinguishes anonymous from
authenticated requests.
*/
func TestRequireAuth(t *testing.T) {
	// 1. Anonymous request -> 401
	reached := false
	handler := middleware.RequireAuth(okHandler(&reached, nil))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	// 2. Authenticated request -> pass
	reached = false
	ctx := ctxutil.WithIdentity(context.Background(), &sec.Identity{UserID: "user-1", Role: sec.RoleMember})
	request = httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

/*
TestRequireRoles verifies the 401-vs-403 split: missing identity is an
authentication failure, wrong role an authorization failure.
*/
func TestRequireRoles(t *testing.T) {
	tests := []struct {
		name       string
		identity   *sec.Identity
		wantStatus int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"member_blocked", &sec.Identity{UserID: "u1", Role: sec.RoleMember}, http.StatusForbidden},
		{"admin_allowed", &sec.Identity{UserID: "u2", Role: sec.RoleAdmin}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached := false
			handler := middleware.RequireAdmin(okHandler(&reached, nil))

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.identity != nil {
				request = request.WithContext(ctxutil.WithIdentity(request.Context(), tt.identity))
			}

			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, reached)
		})
	}
}
