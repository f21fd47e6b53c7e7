// Copyright (c) 2026 Taskrow. All rights reserved.
// Author: dev@taskrow.app

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/minhbui/taskrow/internal/platform/sec"
)

/*
TestRole_Valid verifies the closed role enum.
*/
func TestRole_Valid(t *testing.T) {
	tests := []struct {
		name    string
		role    sec.Role
		isValid bool
	}{
		{"admin", sec.RoleAdmin, true},
		{"member", sec.RoleMember, true},
		{"uppercase_rejected", sec.Role("ADMIN"), false},
		{"unknown", sec.Role("owner"), false},
		{"empty", sec.Role(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.role.Valid())
		})
	}
}

/*
TestRole_In verifies allow-list membership checks.
*/
func TestRole_In(t *testing.T) {
	assert.True(t, sec.RoleAdmin.In(sec.RoleAdmin))
	assert.True(t, sec.RoleMember.In(sec.RoleAdmin, sec.RoleMember))
	assert.False(t, sec.RoleMember.In(sec.RoleAdmin))
	assert.False(t, sec.RoleMember.In())
}
