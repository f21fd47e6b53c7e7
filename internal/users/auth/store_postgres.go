// Copyright (c) 2026 Taskrow. All rights reserved.
// Author: dev@taskrow.app

// PostgreSQL implementations of the credential store contracts.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types so callers never see driver detail.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minhbui/taskrow/internal/platform/apperr"
	"github.com/minhbui/taskrow/internal/platform/dberr"
)

// userColumns is the canonical SELECT list for users.account.
const userColumns = "id, email, username, passwordhash, firstname, lastname, role, createdat"

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create persists a new user record into the users.account table.
func (repository *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, email, username, passwordhash, firstname, lastname, role, createdat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Role,
		user.CreatedAt,
	)

	if err != nil {
		// Two racing registrations can both pass the service-layer duplicate
		// check; the unique indexes are the final arbiter.
		return dberr.Wrap(fmt.Errorf("postgres_user_repo_create_failed: %w", err))
	}

	return nil
}

// FindByID retrieves a user record by primary key.
func (repository *PostgresUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE id = $1`

	return repository.scanOne(ctx, query, id)
}

// FindByEmail retrieves a user record by email. The match is exact but
// case-insensitive: "A@B.com" and "a@b.com" resolve to the same account.
func (repository *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE LOWER(email) = LOWER($1)`

	return repository.scanOne(ctx, query, email)
}

// FindByUsername retrieves a user record by username, case-insensitively.
func (repository *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		WHERE LOWER(username) = LOWER($1)`

	return repository.scanOne(ctx, query, username)
}

// scanOne runs a single-row user query and maps pgx.ErrNoRows to NotFound.
func (repository *PostgresUserRepository) scanOne(ctx context.Context, query string, arg any) (*User, error) {
	user := &User{}
	err := repository.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_failed: %w", err)
	}

	return user, nil
}

// Update persists changes to a user's mutable profile fields.
func (repository *PostgresUserRepository) Update(ctx context.Context, user *User) error {
	const query = `
		UPDATE users.account
		SET email = $2, username = $3, firstname = $4, lastname = $5
		WHERE id = $1`

	_, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.Username,
		user.FirstName,
		user.LastName,
	)

	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_failed: %w", err)
	}

	return nil
}

// UpdateRole replaces only the role of a specific user.
func (repository *PostgresUserRepository) UpdateRole(ctx context.Context, userID string, role string) error {
	const query = "UPDATE users.account SET role = $2 WHERE id = $1"
	_, err := repository.pool.Exec(ctx, query, userID, role)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_role_failed: %w", err)
	}
	return nil
}

// Delete hard-deletes the account and its refresh tokens in one transaction.
//
// The cascade and the account delete commit together: a deleted user can
// never be observed with live tokens still attached.
func (repository *PostgresUserRepository) Delete(ctx context.Context, id string) (bool, error) {
	tx, err := repository.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("postgres_user_repo_delete_begin_failed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM users.refreshtoken WHERE userid = $1", id); err != nil {
		return false, fmt.Errorf("postgres_user_repo_delete_tokens_failed: %w", err)
	}

	tag, err := tx.Exec(ctx, "DELETE FROM users.account WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("postgres_user_repo_delete_failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("postgres_user_repo_delete_commit_failed: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// List returns a page of users ordered newest-first.
func (repository *PostgresUserRepository) List(ctx context.Context, limit, offset int) ([]*User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users.account
		ORDER BY createdat DESC
		LIMIT $1 OFFSET $2`

	rows, err := repository.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("postgres_user_repo_list_failed: %w", err)
	}
	defer rows.Close()

	users := make([]*User, 0, limit)
	for rows.Next() {
		user := &User{}
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.Username,
			&user.PasswordHash,
			&user.FirstName,
			&user.LastName,
			&user.Role,
			&user.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres_user_repo_list_scan_failed: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_user_repo_list_rows_failed: %w", err)
	}

	return users, nil
}

// Count returns the total number of user accounts.
func (repository *PostgresUserRepository) Count(ctx context.Context) (int, error) {
	var total int
	err := repository.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users.account").Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("postgres_user_repo_count_failed: %w", err)
	}
	return total, nil
}

// # Refresh Token Repository

// PostgresRefreshTokenRepository implements RefreshTokenRepository using pgx.
type PostgresRefreshTokenRepository struct {
	pool *pgxpool.Pool
}

// NewRefreshTokenRepository creates a new PostgreSQL implementation of
// RefreshTokenRepository.
func NewRefreshTokenRepository(pool *pgxpool.Pool) *PostgresRefreshTokenRepository {
	return &PostgresRefreshTokenRepository{pool: pool}
}

// Create persists a new refresh token row.
func (repository *PostgresRefreshTokenRepository) Create(ctx context.Context, token *RefreshToken) error {
	const query = `
		INSERT INTO users.refreshtoken (id, userid, token, expiresat, createdat)
		VALUES ($1, $2, $3, $4, $5)`

	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(ctx, query,
		token.ID,
		token.UserID,
		token.Token,
		token.ExpiresAt,
		token.CreatedAt,
	)

	if err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_token_repo_create_failed: %w", err))
	}

	return nil
}

// FindByToken resolves a raw token value into its stored row.
func (repository *PostgresRefreshTokenRepository) FindByToken(ctx context.Context, rawToken string) (*RefreshToken, error) {
	const query = `
		SELECT id, userid, token, expiresat, createdat
		FROM users.refreshtoken
		WHERE token = $1`

	token := &RefreshToken{}
	err := repository.pool.QueryRow(ctx, query, rawToken).Scan(
		&token.ID,
		&token.UserID,
		&token.Token,
		&token.ExpiresAt,
		&token.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Refresh token")
		}
		return nil, fmt.Errorf("postgres_token_repo_find_failed: %w", err)
	}

	return token, nil
}

// DeleteByToken removes the row holding the raw token value.
func (repository *PostgresRefreshTokenRepository) DeleteByToken(ctx context.Context, rawToken string) (bool, error) {
	tag, err := repository.pool.Exec(ctx, "DELETE FROM users.refreshtoken WHERE token = $1", rawToken)
	if err != nil {
		return false, fmt.Errorf("postgres_token_repo_delete_failed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteForUser removes every token owned by the user.
func (repository *PostgresRefreshTokenRepository) DeleteForUser(ctx context.Context, userID string) error {
	_, err := repository.pool.Exec(ctx, "DELETE FROM users.refreshtoken WHERE userid = $1", userID)
	if err != nil {
		return fmt.Errorf("postgres_token_repo_delete_for_user_failed: %w", err)
	}
	return nil
}

// Replace deletes every token owned by token.UserID and inserts the new row
// inside a single transaction, closing the race between two concurrent
// logins for the same account.
func (repository *PostgresRefreshTokenRepository) Replace(ctx context.Context, token *RefreshToken) error {
	tx, err := repository.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres_token_repo_replace_begin_failed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM users.refreshtoken WHERE userid = $1", token.UserID); err != nil {
		return fmt.Errorf("postgres_token_repo_replace_delete_failed: %w", err)
	}

	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	const insert = `
		INSERT INTO users.refreshtoken (id, userid, token, expiresat, createdat)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := tx.Exec(ctx, insert,
		token.ID,
		token.UserID,
		token.Token,
		token.ExpiresAt,
		token.CreatedAt,
	); err != nil {
		return dberr.Wrap(fmt.Errorf("postgres_token_repo_replace_insert_failed: %w", err))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres_token_repo_replace_commit_failed: %w", err)
	}

	return nil
}
