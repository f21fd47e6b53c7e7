// Copyright (c) 2026 Taskrow. All rights reserved.
// Author: dev@taskrow.app

package auth_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhbui/taskrow/internal/platform/constants"
	"github.com/minhbui/taskrow/internal/platform/middleware"
	"github.com/minhbui/taskrow/internal/platform/sec"
	"github.com/minhbui/taskrow/internal/users/auth"
)

// passthroughLimit stands in for the Redis-backed auth rate limiter.
func passthroughLimit(next http.Handler) http.Handler { return next }

// newTestServer builds a router matching the production layout: the
// authentication middleware in front of the auth routes mounted under
// /api/v1/auth.
func newTestServer(t *testing.T) (*httptest.Server, *testHarness) {
	t.Helper()

	h := newTestHarness(t)
	handler := auth.NewHandler(h.service, false, passthroughLimit)

	router := chi.NewRouter()
	router.Use(middleware.StructuredLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	router.Use(middleware.Authenticate(h.issuer, h.service))
	router.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", handler.Routes())
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server, h
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	response, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	return response
}

func decodeEnvelope(t *testing.T, response *http.Response) map[string]any {
	t.Helper()
	defer response.Body.Close()

	var envelope map[string]any
	require.NoError(t, json.NewDecoder(response.Body).Decode(&envelope))
	return envelope
}

func refreshCookie(response *http.Response) *http.Cookie {
	for _, cookie := range response.Cookies() {
		if cookie.Name == constants.RefreshTokenCookieName {
			return cookie
		}
	}
	return nil
}

const registerBody = `{
	"email": "a@x.com",
	"username": "alice",
	"password": "password123",
	"firstName": "A",
	"lastName": "L"
}`

/*
TestHTTP_Register verifies the full registration response contract: status,
body shape, cookie attributes, and the absence of any password material.
*/
func TestHTTP_Register(t *testing.T) {
	server, _ := newTestServer(t)

	response := postJSON(t, server.URL+"/api/v1/auth/register", registerBody)
	require.Equal(t, http.StatusCreated, response.StatusCode)

	// 1. Cookie contract
	cookie := refreshCookie(response)
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, constants.RefreshTokenCookiePath, cookie.Path)
	assert.Equal(t, int(auth.RefreshTokenTTL.Seconds()), cookie.MaxAge)

	// 2. Body contract
	raw, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	response.Body.Close()

	body := strings.ToLower(string(raw))
	assert.NotContains(t, body, "password")

	var envelope struct {
		Data struct {
			AccessToken string `json:"accessToken"`
			User        struct {
				Email    string `json:"email"`
				Username string `json:"username"`
				Role     string `json:"role"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &envelope))
	assert.NotEmpty(t, envelope.Data.AccessToken)
	assert.Equal(t, "alice", envelope.Data.User.Username)
	assert.Equal(t, string(sec.RoleMember), envelope.Data.User.Role)
}

/*
TestHTTP_Register_Validation verifies that malformed registration input is
rejected with 400 before touching the store.
*/
func TestHTTP_Register_Validation(t *testing.T) {
	server, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"invalid_json", `{not json`},
		{"missing_fields", `{"email": "a@x.com"}`},
		{"bad_email", `{"email": "nope", "username": "alice", "password": "password123", "firstName": "A", "lastName": "L"}`},
		{"short_password", `{"email": "a@x.com", "username": "alice", "password": "short", "firstName": "A", "lastName": "L"}`},
		{"short_username", `{"email": "a@x.com", "username": "al", "password": "password123", "firstName": "A", "lastName": "L"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response := postJSON(t, server.URL+"/api/v1/auth/register", tt.body)
			defer response.Body.Close()
			assert.Equal(t, http.StatusBadRequest, response.StatusCode)
		})
	}
}

/*
TestHTTP_Register_Duplicate verifies that a duplicate email registers as a
400 conflict through the HTTP surface.
*/
func TestHTTP_Register_Duplicate(t *testing.T) {
	server, _ := newTestServer(t)

	first := postJSON(t, server.URL+"/api/v1/auth/register", registerBody)
	first.Body.Close()
	require.Equal(t, http.StatusCreated, first.StatusCode)

	second := postJSON(t, server.URL+"/api/v1/auth/register", registerBody)
	envelope := decodeEnvelope(t, second)
	assert.Equal(t, http.StatusBadRequest, second.StatusCode)
	assert.Equal(t, "CONFLICT", envelope["code"])
}

/*
TestHTTP_Login verifies credential failures share one message and successes
set the refresh cookie.
*/
func TestHTTP_Login(t *testing.T) {
	server, _ := newTestServer(t)

	created := postJSON(t, server.URL+"/api/v1/auth/register", registerBody)
	created.Body.Close()
	require.Equal(t, http.StatusCreated, created.StatusCode)

	// 1. Wrong password and unknown email produce the identical envelope.
	wrongPassword := postJSON(t, server.URL+"/api/v1/auth/login", `{"email": "a@x.com", "password": "wrong-password"}`)
	wrongEnvelope := decodeEnvelope(t, wrongPassword)
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.StatusCode)
	assert.Equal(t, auth.InvalidCredentialsMessage, wrongEnvelope["error"])

	unknownEmail := postJSON(t, server.URL+"/api/v1/auth/login", `{"email": "nobody@x.com", "password": "password123"}`)
	unknownEnvelope := decodeEnvelope(t, unknownEmail)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.StatusCode)
	assert.Equal(t, wrongEnvelope["error"], unknownEnvelope["error"])

	// 2. Correct credentials succeed and rotate the cookie.
	success := postJSON(t, server.URL+"/api/v1/auth/login", `{"email": "a@x.com", "password": "password123"}`)
	defer success.Body.Close()
	assert.Equal(t, http.StatusOK, success.StatusCode)
	assert.NotNil(t, refreshCookie(success))
}

/*
TestHTTP_Refresh verifies the cookie-driven refresh flow.
*/
func TestHTTP_Refresh(t *testing.T) {
	server, _ := newTestServer(t)

	created := postJSON(t, server.URL+"/api/v1/auth/register", registerBody)
	created.Body.Close()
	cookie := refreshCookie(created)
	require.NotNil(t, cookie)

	// 1. No cookie -> 401
	missing := postJSON(t, server.URL+"/api/v1/auth/refresh", "")
	missing.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, missing.StatusCode)

	// 2. Valid cookie -> fresh access token
	request, err := http.NewRequest(http.MethodPost, server.URL+"/api/v1/auth/refresh", nil)
	require.NoError(t, err)
	request.AddCookie(cookie)

	response, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	envelope := decodeEnvelope(t, response)
	assert.Equal(t, http.StatusOK, response.StatusCode)

	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)
	accessToken, _ := data["accessToken"].(string)
	assert.NotEmpty(t, accessToken)

	// 3. The cookie value works as a refresh token only, never as a bearer.
	meRequest, err := http.NewRequest(http.MethodGet, server.URL+"/api/v1/auth/me", nil)
	require.NoError(t, err)
	meRequest.Header.Set("Authorization", "Bearer "+cookie.Value)

	meResponse, err := http.DefaultClient.Do(meRequest)
	require.NoError(t, err)
	meResponse.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, meResponse.StatusCode)
}

/*
TestHTTP_Me verifies the identity endpoint for valid, garbage, and absent
tokens.
*/
func TestHTTP_Me(t *testing.T) {
	server, _ := newTestServer(t)

	created := postJSON(t, server.URL+"/api/v1/auth/register", registerBody)
	var createdEnvelope struct {
		Data struct {
			AccessToken string `json:"accessToken"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(created.Body).Decode(&createdEnvelope))
	created.Body.Close()

	get := func(token string) *http.Response {
		request, err := http.NewRequest(http.MethodGet, server.URL+"/api/v1/auth/me", nil)
		require.NoError(t, err)
		if token != "" {
			request.Header.Set("Authorization", token)
		}
		response, err := http.DefaultClient.Do(request)
		require.NoError(t, err)
		return response
	}

	// 1. Valid token -> identity
	valid := get("Bearer " + createdEnvelope.Data.AccessToken)
	envelope := decodeEnvelope(t, valid)
	assert.Equal(t, http.StatusOK, valid.StatusCode)

	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", data["username"])

	// 2. Garbage token -> 401, never 500
	garbage := get("Bearer complete-garbage")
	garbage.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, garbage.StatusCode)

	// 3. No token -> 401
	anonymous := get("")
	anonymous.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, anonymous.StatusCode)
}

/*
TestHTTP_Logout verifies authentication gating, cookie clearing, and
idempotence of the logout endpoint.
*/
func TestHTTP_Logout(t *testing.T) {
	server, h := newTestServer(t)

	created := postJSON(t, server.URL+"/api/v1/auth/register", registerBody)
	cookie := refreshCookie(created)
	require.NotNil(t, cookie)

	var createdEnvelope struct {
		Data struct {
			AccessToken string `json:"accessToken"`
			User        struct {
				ID string `json:"id"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(created.Body).Decode(&createdEnvelope))
	created.Body.Close()

	logout := func(withCookie bool) *http.Response {
		request, err := http.NewRequest(http.MethodPost, server.URL+"/api/v1/auth/logout", nil)
		require.NoError(t, err)
		request.Header.Set("Authorization", "Bearer "+createdEnvelope.Data.AccessToken)
		if withCookie {
			request.AddCookie(cookie)
		}
		response, err := http.DefaultClient.Do(request)
		require.NoError(t, err)
		return response
	}

	// 1. Unauthenticated logout is rejected.
	anonymous := postJSON(t, server.URL+"/api/v1/auth/logout", "")
	anonymous.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, anonymous.StatusCode)

	// 2. First logout succeeds and clears the cookie.
	first := logout(true)
	defer first.Body.Close()
	assert.Equal(t, http.StatusOK, first.StatusCode)

	cleared := refreshCookie(first)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
	assert.Equal(t, 0, h.store.TokenCountForUser(createdEnvelope.Data.User.ID))

	// 3. Second logout with the dead cookie still reports success.
	second := logout(true)
	second.Body.Close()
	assert.Equal(t, http.StatusOK, second.StatusCode)
}
