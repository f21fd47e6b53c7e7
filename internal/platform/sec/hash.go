// Copyright (c) 2026 Taskrow. All rights reserved.
// Author: dev@taskrow.app

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// passwordCost is the bcrypt work factor for all stored password hashes.
const passwordCost = 10

// HashPassword hashes a plain-text password using the bcrypt algorithm.
// Each call embeds a fresh random salt, so hashing the same password twice
// yields different hashes.
func HashPassword(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), passwordCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version.
// The comparison is constant-time inside bcrypt. A malformed hash simply
// yields false; this function never returns an error.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}
