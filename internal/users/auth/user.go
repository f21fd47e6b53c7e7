// Copyright (c) 2026 Taskrow. All rights reserved.
// Author: dev@taskrow.app

/*
Package auth implements the user identity and session management layer.

It defines the core domain entities (User, RefreshToken) and the logic for
authentication, authorization, and credential lifecycle.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no
transport or storage dependencies and encapsulate all business rules related
to user identity.
*/
package auth

import (
	"time"

	"github.com/minhbui/taskrow/internal/platform/sec"
)

// # Domain Entities

// User represents a registered Taskrow account.
//
// Email and username are unique case-insensitively; the stored values keep
// the caller's original casing while all lookups fold case.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Role         sec.Role  `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Identity projects the user into its request-scoped, password-free form.
func (u *User) Identity() *sec.Identity {
	return &sec.Identity{
		UserID:    u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken is a stored long-lived credential owned by exactly one user.
//
// The raw signed token string doubles as the lookup key. Rows are deleted on
// logout, on expiry detection during refresh, and when the owning user is
// deleted. Steady state holds at most one live row per user: login replaces
// all prior rows atomically.
type RefreshToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Token     string    `json:"-"` // Raw credential. Never serialized.
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Expired reports whether the stored row is past its expiry instant.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// # Field Identifiers

// Field names for validation and response mapping in the authentication domain.
const (
	FieldEmail       = "email"
	FieldUsername    = "username"
	FieldPassword    = "password"
	FieldFirstName   = "firstName"
	FieldLastName    = "lastName"
	FieldRole        = "role"
	FieldUser        = "user"
	FieldAccessToken = "accessToken"
	FieldMessage     = "message"
)
