// Copyright (c) 2026 Taskrow. All rights reserved.
// Author: dev@taskrow.app

/*
Package uuid generates time-ordered unique identifiers.

It wraps the standard UUID library to emit Version 7 values only. UUIDv7 ids
sort by creation time at millisecond precision, which keeps PostgreSQL
B-tree indexes compact and makes "newest first" orderings cheap.

Every Taskrow primary key uses this type.
*/
package uuid

import "github.com/google/uuid"

// # Generators

// New generates a new UUIDv7 string.
func New() string {
	id, err := uuid.NewV7()

	// entropy failure is an unrecoverable system-level error
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}

	return id.String()
}

// Must generates a new UUIDv7 or panics. For call sites where ID generation
// failure is not an option.
func Must() string {
	return New()
}
