// Copyright (c) 2026 Taskrow. All rights reserved.
// Author: dev@taskrow.app

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via the TokenIssuer interface defined by its consumers.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind tags a JWT as either an access or a refresh credential.
//
// # Why a kind claim?
//
// Both token kinds are signed with the same process-wide secret. Without a
// strictly-checked kind claim a refresh token could be replayed as an access
// token (and vice versa). [TokenService.Verify] rejects any token whose kind
// does not match what the call site expects.
type TokenKind string

const (
	// KindAccess marks the short-lived credential read from the Authorization header.
	KindAccess TokenKind = "access"

	// KindRefresh marks the long-lived credential read from the refresh cookie.
	KindRefresh TokenKind = "refresh"
)

// TokenClaims is the payload embedded in every Taskrow JWT.
//
// The subject carries the user ID; everything else about the user is loaded
// fresh from the store on each request, so a token stays small and a deleted
// or demoted user is never trusted on stale claims.
type TokenClaims struct {
	jwt.RegisteredClaims

	// Kind distinguishes access from refresh tokens.
	Kind TokenKind `json:"kind"`
}

// UserID returns the subject claim.
func (c *TokenClaims) UserID() string { return c.Subject }

// TokenService handles generation and verification of JWT tokens using HS256
// with a single process-wide secret.
type TokenService struct {
	secret []byte
	issuer string
}

// NewTokenService creates a new TokenService. The secret must not be empty;
// configuration loading enforces that before this constructor runs in
// production.
func NewTokenService(secret, issuer string) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("sec: token secret must not be empty")
	}
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
	}, nil
}

// GenerateAccessToken creates a signed access token for a user.
func (service *TokenService) GenerateAccessToken(userID string, timeToLive time.Duration) (string, error) {
	return service.generate(userID, KindAccess, timeToLive)
}

// GenerateRefreshToken creates a signed refresh token for a user.
func (service *TokenService) GenerateRefreshToken(userID string, timeToLive time.Duration) (string, error) {
	return service.generate(userID, KindRefresh, timeToLive)
}

// generate signs a token of the given kind with the shared secret.
func (service *TokenService) generate(userID string, kind TokenKind, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		Kind: kind,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign %s token: %w", kind, err)
	}

	return signedToken, nil
}

// Verify checks the signature, expiry, and kind of a JWT string.
//
// Any failure — malformed input, bad signature, expiry, kind mismatch —
// comes back as an error. Callers translate every error into a generic 401;
// the detail is never surfaced to clients.
func (service *TokenService) Verify(tokenString string, expectedKind TokenKind) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, errors.New("sec: invalid token claims")
	}

	// Strict kind check: an access token presented where a refresh token is
	// expected (or vice versa) is rejected outright.
	if claims.Kind != expectedKind {
		return nil, fmt.Errorf("sec: token kind %q where %q expected", claims.Kind, expectedKind)
	}

	if claims.Subject == "" {
		return nil, errors.New("sec: token has no subject")
	}

	return claims, nil
}
