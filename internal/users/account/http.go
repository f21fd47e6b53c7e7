// Copyright (c) 2026 Taskrow. All rights reserved.
// Author: dev@taskrow.app

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/minhbui/taskrow/internal/platform/middleware"
	requestutil "github.com/minhbui/taskrow/internal/platform/request"
	"github.com/minhbui/taskrow/internal/platform/respond"
	"github.com/minhbui/taskrow/internal/platform/sec"
	"github.com/minhbui/taskrow/internal/platform/validate"
	"github.com/minhbui/taskrow/internal/users/auth"
	"github.com/minhbui/taskrow/pkg/pagination"
)

// Handler implements the HTTP layer for user directory management.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with the user directory endpoints.
//
// # Endpoints
//   - GET    /          : Lists users (admin).
//   - GET    /{id}      : Retrieves one user (admin).
//   - PATCH  /{id}/role : Changes a user's role (admin).
//   - DELETE /{id}      : Deletes a user and their sessions (admin).
//   - PATCH  /me        : Updates the caller's own profile.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Patch("/me", handler.updateMe)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		r.Get("/", handler.list)
		r.Get("/{id}", handler.get)
		r.Patch("/{id}/role", handler.changeRole)
		r.Delete("/{id}", handler.delete)
	})

	return router
}

// # Administrative Endpoints

/*
List returns a page of registered users.

GET /api/v1/users?page=&limit=

Response:
  - 200: Paginated user list, newest first
  - 401/403: Guard failures
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	users, total, err := handler.accountService.List(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
Get retrieves a single user by ID.

GET /api/v1/users/{id}

Response:
  - 200: The user record
  - 400: Invalid UUID
  - 404: Unknown user
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	userID := requestutil.Param(request, "id")

	validator := &validate.Validator{}
	if err := validator.UUID("id", userID).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.Get(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

/*
ChangeRole assigns a new role to a user.

PATCH /api/v1/users/{id}/role

Request:
  - Body: changeRoleRequest (Role: "admin" or "member")

Response:
  - 200: The updated user record
  - 400: Invalid UUID or unknown role
  - 404: Unknown user
*/
func (handler *Handler) changeRole(writer http.ResponseWriter, request *http.Request) {
	userID := requestutil.Param(request, "id")

	var input changeRoleRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.UUID("id", userID).
		Required(auth.FieldRole, input.Role).
		OneOf(auth.FieldRole, input.Role, string(sec.RoleAdmin), string(sec.RoleMember))

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.ChangeRole(request.Context(), userID, sec.Role(input.Role))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
Delete removes a user account and revokes all of its refresh tokens.

DELETE /api/v1/users/{id}

Description: Idempotent; deleting an already-absent user still returns 204.

Response:
  - 204: No Content
  - 400: Invalid UUID
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	userID := requestutil.Param(request, "id")

	validator := &validate.Validator{}
	if err := validator.UUID("id", userID).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.Delete(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Self-Service Endpoints

type updateMeRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

/*
UpdateMe applies a partial update to the caller's own profile.

PATCH /api/v1/users/me

Request:
  - Body: updateMeRequest (partial JSON; absent fields are unchanged)

Response:
  - 200: The updated user record
  - 400: Validation failure
  - 401: Authentication required
*/
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateMeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	if input.FirstName != nil {
		validator.Required(auth.FieldFirstName, *input.FirstName).MaxLen(auth.FieldFirstName, *input.FirstName, 100)
	}
	if input.LastName != nil {
		validator.Required(auth.FieldLastName, *input.LastName).MaxLen(auth.FieldLastName, *input.LastName, 100)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.UpdateProfile(request.Context(), identity.UserID, UpdateProfileInput{
		FirstName: input.FirstName,
		LastName:  input.LastName,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}
