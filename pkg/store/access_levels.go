package store

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/wardenauth/warden/pkg/errdefs"
)

// CreateAccessLevel inserts a new access level. The name must be unique.
func (s *Store) CreateAccessLevel(ctx context.Context, level *AccessLevel) error {
	query := `
		INSERT INTO access_levels (name, description, permissions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	now := time.Now()
	err := s.db.QueryRowContext(ctx, query,
		level.Name,
		level.Description,
		pq.Array(level.Permissions),
		now,
		now,
	).Scan(&level.ID)
	if err != nil {
		return wrapError("failed to create access level", err)
	}

	level.CreatedAt = now
	level.UpdatedAt = now
	return nil
}

// GetAccessLevel retrieves an access level by ID.
func (s *Store) GetAccessLevel(ctx context.Context, id string) (*AccessLevel, error) {
	query := `
		SELECT id, name, COALESCE(description, ''), permissions, created_at, updated_at
		FROM access_levels
		WHERE id = $1
	`

	var level AccessLevel
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&level.ID,
		&level.Name,
		&level.Description,
		pq.Array(&level.Permissions),
		&level.CreatedAt,
		&level.UpdatedAt,
	)
	if err != nil {
		return nil, wrapError("failed to get access level", err)
	}

	return &level, nil
}

// ListAccessLevels returns all access levels ordered by name.
func (s *Store) ListAccessLevels(ctx context.Context) ([]AccessLevel, error) {
	query := `
		SELECT id, name, COALESCE(description, ''), permissions, created_at, updated_at
		FROM access_levels
		ORDER BY name ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapError("failed to list access levels", err)
	}
	defer rows.Close()

	var levels []AccessLevel
	for rows.Next() {
		var level AccessLevel
		err := rows.Scan(
			&level.ID,
			&level.Name,
			&level.Description,
			pq.Array(&level.Permissions),
			&level.CreatedAt,
			&level.UpdatedAt,
		)
		if err != nil {
			return nil, wrapError("failed to scan access level", err)
		}
		levels = append(levels, level)
	}

	return levels, rows.Err()
}

// AccessLevelUpdate carries the mutable fields; nil means leave unchanged.
type AccessLevelUpdate struct {
	Name        *string
	Description *string
	Permissions []string
}

// UpdateAccessLevel applies a partial update and returns the updated row.
func (s *Store) UpdateAccessLevel(ctx context.Context, id string, update AccessLevelUpdate) (*AccessLevel, error) {
	query := `
		UPDATE access_levels
		SET name = COALESCE($1, name),
		    description = COALESCE($2, description),
		    permissions = COALESCE($3, permissions),
		    updated_at = $4
		WHERE id = $5
		RETURNING id, name, COALESCE(description, ''), permissions, created_at, updated_at
	`

	var permissions interface{}
	if update.Permissions != nil {
		permissions = pq.Array(update.Permissions)
	}

	var level AccessLevel
	err := s.db.QueryRowContext(ctx, query, update.Name, update.Description, permissions, time.Now(), id).Scan(
		&level.ID,
		&level.Name,
		&level.Description,
		pq.Array(&level.Permissions),
		&level.CreatedAt,
		&level.UpdatedAt,
	)
	if err != nil {
		return nil, wrapError("failed to update access level", err)
	}

	return &level, nil
}

// DeleteAccessLevel removes an access level by ID.
func (s *Store) DeleteAccessLevel(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM access_levels WHERE id = $1`, id)
	if err != nil {
		return wrapError("failed to delete access level", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return wrapError("failed to delete access level", err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to delete access level: %w", errdefs.ErrNotFound)
	}

	return nil
}
