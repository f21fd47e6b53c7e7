// Copyright (c) 2026 Taskrow. All rights reserved.
// Author: dev@taskrow.app

package sec

import "time"

// Identity is the authenticated, password-free projection of a user that the
// middleware attaches to a request after verifying its bearer token.
//
// # Lifecycle
//
// An Identity is built per request from a fresh store lookup and discarded
// when the request completes. It is never persisted, and it never carries
// the password hash.
type Identity struct {
	UserID    string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}
