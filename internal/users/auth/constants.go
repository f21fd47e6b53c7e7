// Copyright (c) 2026 Taskrow. All rights reserved.
// Author: dev@taskrow.app

package auth

import "time"

// # Authentication Constraints

const (
	// AccessTokenTTL is the duration a JWT access token remains valid.
	// Kept short (15m) to minimize the impact of a leaked token.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL is the duration a refresh token remains valid, and the
	// Max-Age of the cookie that carries it.
	RefreshTokenTTL = 7 * 24 * time.Hour

	// PasswordMinLen is the minimum accepted password length.
	PasswordMinLen = 8

	// UsernameMinLen is the minimum accepted username length.
	UsernameMinLen = 3
)

// InvalidCredentialsMessage is the single message for every login failure.
// Unknown email and wrong password must be indistinguishable to the caller.
const InvalidCredentialsMessage = "Invalid email or password"
