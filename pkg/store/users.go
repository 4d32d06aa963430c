package store

import (
	"context"
	"fmt"
	"time"

	"github.com/wardenauth/warden/pkg/errdefs"
)

// CreateUser inserts a new user. The email must be unique; duplicates return
// errdefs.ErrConflict.
func (s *Store) CreateUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (email, password, name, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	now := time.Now()
	err := s.db.QueryRowContext(ctx, query,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.IsActive,
		now,
		now,
	).Scan(&user.ID)
	if err != nil {
		return wrapError("failed to create user", err)
	}

	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, email, password, name, is_active, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user User
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, wrapError("failed to get user", err)
	}

	return &user, nil
}

// GetUserByEmail retrieves a user by email, including the password hash for
// credential verification.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, email, password, name, is_active, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	var user User
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, wrapError("failed to get user by email", err)
	}

	return &user, nil
}

// ListUsers returns all users ordered by creation time.
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	query := `
		SELECT id, email, password, name, is_active, created_at, updated_at
		FROM users
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapError("failed to list users", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var user User
		err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.PasswordHash,
			&user.Name,
			&user.IsActive,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, wrapError("failed to scan user", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// UserUpdate carries the mutable user fields; nil means leave unchanged.
type UserUpdate struct {
	Name     *string
	IsActive *bool
}

// UpdateUser applies a partial update and returns the updated row.
func (s *Store) UpdateUser(ctx context.Context, id string, update UserUpdate) (*User, error) {
	query := `
		UPDATE users
		SET name = COALESCE($1, name),
		    is_active = COALESCE($2, is_active),
		    updated_at = $3
		WHERE id = $4
		RETURNING id, email, password, name, is_active, created_at, updated_at
	`

	var user User
	err := s.db.QueryRowContext(ctx, query, update.Name, update.IsActive, time.Now(), id).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, wrapError("failed to update user", err)
	}

	return &user, nil
}

// DeleteUser removes a user by ID. Missing users return errdefs.ErrNotFound.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return wrapError("failed to delete user", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return wrapError("failed to delete user", err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to delete user: %w", errdefs.ErrNotFound)
	}

	return nil
}
