// Copyright (c) 2026 Taskrow. All rights reserved.
// Author: dev@taskrow.app

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/minhbui/taskrow/internal/platform/apperr"
	"github.com/minhbui/taskrow/internal/platform/constants"
	"github.com/minhbui/taskrow/internal/platform/middleware"
	requestutil "github.com/minhbui/taskrow/internal/platform/request"
	"github.com/minhbui/taskrow/internal/platform/respond"
	"github.com/minhbui/taskrow/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the authentication HTTP endpoints.
//
// It is a thin mediation layer between the web and [Service]: input
// validation, status codes, and refresh token cookie handling live here;
// everything else is delegated.
type Handler struct {
	authService *Service

	// secureCookies controls the Secure attribute on the refresh cookie.
	// Enabled in production, disabled for plain-HTTP local development.
	secureCookies bool

	// rateLimit is the shared fixed-window limiter applied to every
	// mutating auth endpoint.
	rateLimit func(http.Handler) http.Handler
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, secureCookies bool, rateLimit func(http.Handler) http.Handler) *Handler {
	return &Handler{
		authService:   service,
		secureCookies: secureCookies,
		rateLimit:     rateLimit,
	}
}

// Routes returns a [chi.Router] configured with the authentication routes.
//
// # Endpoints
//   - POST /register : Creates a new account and opens a session.
//   - POST /login    : Authenticates and opens a session.
//   - POST /refresh  : Exchanges the refresh cookie for a new access token.
//   - POST /logout   : Revokes the session (requires authentication).
//   - GET  /me       : Returns the authenticated identity.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Mutating endpoints share the auth rate limit window.
	router.Group(func(r chi.Router) {
		r.Use(handler.rateLimit)

		r.Post("/register", handler.register)
		r.Post("/login", handler.login)
		r.Post("/refresh", handler.refresh)

		r.Group(func(protected chi.Router) {
			protected.Use(middleware.RequireAuth)
			protected.Post("/logout", handler.logout)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.me)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

/*
Register handles the creation of a new user account.

POST /api/v1/auth/register

Description: Validates input, checks for identity conflicts, persists the
new account with the member role, and opens a session for it.

Request:
  - Body: registerRequest (Email, Username, Password, FirstName, LastName)

Response:
  - 201: User profile and access token, plus the refresh cookie
  - 400: ErrInvalidJSON, validation failure, or duplicate email/username
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldUsername, input.Username).
		MinLen(FieldUsername, input.Username, UsernameMinLen).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, PasswordMinLen).
		Required(FieldFirstName, input.FirstName).
		Required(FieldLastName, input.LastName)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Register(request.Context(), RegisterInput{
		Email:     input.Email,
		Username:  input.Username,
		Password:  input.Password,
		FirstName: input.FirstName,
		LastName:  input.LastName,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setRefreshCookie(writer, session.RefreshToken)

	respond.Created(writer, map[string]any{
		FieldUser:        session.User,
		FieldAccessToken: session.AccessToken,
	})
}

/*
Login authenticates a user and establishes a session.

POST /api/v1/auth/login

Description: Verifies credentials, replaces any existing refresh tokens for
the user, and injects a fresh refresh token cookie into the response.

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: User profile and access token, plus the refresh cookie
  - 401: ErrUnauthorized: the single invalid-credentials message
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setRefreshCookie(writer, session.RefreshToken)

	respond.OK(writer, map[string]any{
		FieldUser:        session.User,
		FieldAccessToken: session.AccessToken,
	})
}

/*
Refresh issues a new access token using a valid refresh token.

POST /api/v1/auth/refresh

Description: Reads the refresh token from its cookie (never from a header),
validates it against both the store and the token signature, and returns a
fresh access token. The refresh token itself is not rotated.

Response:
  - 200: New access token
  - 401: ErrUnauthorized: Missing, unknown, expired, or invalid token
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		respond.Error(writer, request, apperr.Unauthorized("Missing refresh token in cookies"))
		return
	}

	accessToken, err := handler.authService.Refresh(request.Context(), cookie.Value)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		FieldAccessToken: accessToken,
	})
}

/*
Logout terminates the authenticated user's session.

POST /api/v1/auth/logout

Description: Revokes the presented refresh token and every other token the
user owns, then clears the cookie. Idempotent: an already-revoked or absent
cookie still reports success.

Response:
  - 200: Success message
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	rawToken := ""
	if cookie, cookieErr := request.Cookie(constants.RefreshTokenCookieName); cookieErr == nil {
		rawToken = cookie.Value
	}

	if err := handler.authService.Logout(request.Context(), identity, rawToken); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.clearRefreshCookie(writer)

	respond.OK(writer, map[string]string{
		FieldMessage: "Logged out successfully",
	})
}

/*
Me returns the authenticated user's identity.

GET /api/v1/auth/me

Response:
  - 200: The identity attached by the authentication middleware
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, identity)
}

// # Cookie Helpers

// setRefreshCookie attaches the refresh token to the response, scoped to the
// auth path so it is never sent to other endpoints.
func (handler *Handler) setRefreshCookie(writer http.ResponseWriter, token string) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    token,
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   int(RefreshTokenTTL.Seconds()),
		Secure:   handler.secureCookies,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearRefreshCookie expires the refresh cookie on the client.
func (handler *Handler) clearRefreshCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		Secure:   handler.secureCookies,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
