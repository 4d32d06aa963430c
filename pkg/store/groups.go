package store

import (
	"context"
	"fmt"
	"time"

	"github.com/wardenauth/warden/pkg/errdefs"
)

// CreateGroup inserts a new user group referencing exactly one access level.
// A duplicate name returns errdefs.ErrConflict; an unknown access level
// returns errdefs.ErrNotFound.
func (s *Store) CreateGroup(ctx context.Context, group *UserGroup) error {
	query := `
		INSERT INTO user_groups (name, description, access_level_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	now := time.Now()
	err := s.db.QueryRowContext(ctx, query,
		group.Name,
		group.Description,
		group.AccessLevelID,
		now,
		now,
	).Scan(&group.ID)
	if err != nil {
		return wrapError("failed to create group", err)
	}

	group.CreatedAt = now
	group.UpdatedAt = now
	return nil
}

// GetGroup retrieves a group by ID.
func (s *Store) GetGroup(ctx context.Context, id string) (*UserGroup, error) {
	query := `
		SELECT id, name, COALESCE(description, ''), access_level_id, created_at, updated_at
		FROM user_groups
		WHERE id = $1
	`

	var group UserGroup
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&group.ID,
		&group.Name,
		&group.Description,
		&group.AccessLevelID,
		&group.CreatedAt,
		&group.UpdatedAt,
	)
	if err != nil {
		return nil, wrapError("failed to get group", err)
	}

	return &group, nil
}

// ListGroups returns all groups ordered by name.
func (s *Store) ListGroups(ctx context.Context) ([]UserGroup, error) {
	query := `
		SELECT id, name, COALESCE(description, ''), access_level_id, created_at, updated_at
		FROM user_groups
		ORDER BY name ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapError("failed to list groups", err)
	}
	defer rows.Close()

	var groups []UserGroup
	for rows.Next() {
		var group UserGroup
		err := rows.Scan(
			&group.ID,
			&group.Name,
			&group.Description,
			&group.AccessLevelID,
			&group.CreatedAt,
			&group.UpdatedAt,
		)
		if err != nil {
			return nil, wrapError("failed to scan group", err)
		}
		groups = append(groups, group)
	}

	return groups, rows.Err()
}

// GroupUpdate carries the mutable fields; nil means leave unchanged.
type GroupUpdate struct {
	Name          *string
	Description   *string
	AccessLevelID *string
}

// UpdateGroup applies a partial update and returns the updated row.
func (s *Store) UpdateGroup(ctx context.Context, id string, update GroupUpdate) (*UserGroup, error) {
	query := `
		UPDATE user_groups
		SET name = COALESCE($1, name),
		    description = COALESCE($2, description),
		    access_level_id = COALESCE($3, access_level_id),
		    updated_at = $4
		WHERE id = $5
		RETURNING id, name, COALESCE(description, ''), access_level_id, created_at, updated_at
	`

	var group UserGroup
	err := s.db.QueryRowContext(ctx, query, update.Name, update.Description, update.AccessLevelID, time.Now(), id).Scan(
		&group.ID,
		&group.Name,
		&group.Description,
		&group.AccessLevelID,
		&group.CreatedAt,
		&group.UpdatedAt,
	)
	if err != nil {
		return nil, wrapError("failed to update group", err)
	}

	return &group, nil
}

// DeleteGroup removes a group by ID.
func (s *Store) DeleteGroup(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM user_groups WHERE id = $1`, id)
	if err != nil {
		return wrapError("failed to delete group", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return wrapError("failed to delete group", err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to delete group: %w", errdefs.ErrNotFound)
	}

	return nil
}

// AddGroupMember links a user to a group. A duplicate (user, group) pair
// returns errdefs.ErrConflict; an unknown user or group returns
// errdefs.ErrNotFound.
func (s *Store) AddGroupMember(ctx context.Context, userID, groupID string) (*GroupMembership, error) {
	query := `
		INSERT INTO user_group_members (user_id, group_id, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	membership := GroupMembership{
		UserID:    userID,
		GroupID:   groupID,
		CreatedAt: time.Now(),
	}
	err := s.db.QueryRowContext(ctx, query, userID, groupID, membership.CreatedAt).Scan(&membership.ID)
	if err != nil {
		return nil, wrapError("failed to add group member", err)
	}

	return &membership, nil
}

// RemoveGroupMember unlinks a user from a group. A missing membership
// returns errdefs.ErrNotFound.
func (s *Store) RemoveGroupMember(ctx context.Context, userID, groupID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM user_group_members WHERE user_id = $1 AND group_id = $2`,
		userID, groupID,
	)
	if err != nil {
		return wrapError("failed to remove group member", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return wrapError("failed to remove group member", err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to remove group member: %w", errdefs.ErrNotFound)
	}

	return nil
}

// ListGroupMembers returns all memberships of a group.
func (s *Store) ListGroupMembers(ctx context.Context, groupID string) ([]GroupMembership, error) {
	query := `
		SELECT id, user_id, group_id, created_at
		FROM user_group_members
		WHERE group_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, wrapError("failed to list group members", err)
	}
	defer rows.Close()

	var members []GroupMembership
	for rows.Next() {
		var m GroupMembership
		if err := rows.Scan(&m.ID, &m.UserID, &m.GroupID, &m.CreatedAt); err != nil {
			return nil, wrapError("failed to scan group member", err)
		}
		members = append(members, m)
	}

	return members, rows.Err()
}
