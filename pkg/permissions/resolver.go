package permissions

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/lib/pq"

	"github.com/wardenauth/warden/pkg/errdefs"
)

// UserPermissions is the resolved authorization snapshot for one user.
type UserPermissions struct {
	UserID      string   `json:"userId"`
	Email       string   `json:"email"`
	Permissions []string `json:"permissions"`
	Groups      []string `json:"groups"`
}

// Resolver computes effective permissions by joining users through group
// memberships to access levels.
type Resolver struct {
	db *sql.DB
}

// NewResolver creates a resolver backed by the given database pool.
func NewResolver(db *sql.DB) *Resolver {
	return &Resolver{db: db}
}

// GetUserPermissions returns the union of all permissions granted to the
// user through group membership, along with the group names. A user with
// no groups gets empty (non-nil) slices; an unknown user returns
// errdefs.ErrNotFound. The LEFT JOINs are what make that distinction
// possible: an existing user always yields at least one row.
func (r *Resolver) GetUserPermissions(ctx context.Context, userID string) (*UserPermissions, error) {
	query := `
		SELECT u.email,
		       g.name,
		       al.permissions
		FROM users u
		LEFT JOIN user_group_members m ON m.user_id = u.id
		LEFT JOIN user_groups g ON g.id = m.group_id
		LEFT JOIN access_levels al ON al.id = g.access_level_id
		WHERE u.id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve permissions: %w", err)
	}
	defer rows.Close()

	result := &UserPermissions{
		UserID:      userID,
		Permissions: []string{},
		Groups:      []string{},
	}

	permSet := make(map[string]struct{})
	groupSet := make(map[string]struct{})
	found := false

	for rows.Next() {
		var (
			email     string
			groupName sql.NullString
			perms     pq.StringArray
		)
		if err := rows.Scan(&email, &groupName, &perms); err != nil {
			return nil, fmt.Errorf("failed to scan permission row: %w", err)
		}

		found = true
		result.Email = email

		if groupName.Valid {
			groupSet[groupName.String] = struct{}{}
		}
		for _, p := range perms {
			permSet[p] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to resolve permissions: %w", err)
	}

	if !found {
		return nil, fmt.Errorf("failed to resolve permissions: %w", errdefs.ErrNotFound)
	}

	for p := range permSet {
		result.Permissions = append(result.Permissions, p)
	}
	for g := range groupSet {
		result.Groups = append(result.Groups, g)
	}
	sort.Strings(result.Permissions)
	sort.Strings(result.Groups)

	return result, nil
}

// CheckPermission reports whether the user holds a single permission. An
// unknown user is false, not an error.
func (r *Resolver) CheckPermission(ctx context.Context, userID, permission string) (bool, error) {
	up, ok, err := r.resolveForCheck(ctx, userID)
	if err != nil || !ok {
		return false, err
	}
	return contains(up.Permissions, permission), nil
}

// CheckPermissions reports whether the user holds every listed permission.
// An empty list is vacuously true; an unknown user is false.
func (r *Resolver) CheckPermissions(ctx context.Context, userID string, required []string) (bool, error) {
	up, ok, err := r.resolveForCheck(ctx, userID)
	if err != nil || !ok {
		return false, err
	}
	for _, p := range required {
		if !contains(up.Permissions, p) {
			return false, nil
		}
	}
	return true, nil
}

// CheckAnyPermission reports whether the user holds at least one of the
// listed permissions. An empty list and an unknown user are both false.
func (r *Resolver) CheckAnyPermission(ctx context.Context, userID string, candidates []string) (bool, error) {
	up, ok, err := r.resolveForCheck(ctx, userID)
	if err != nil || !ok {
		return false, err
	}
	for _, p := range candidates {
		if contains(up.Permissions, p) {
			return true, nil
		}
	}
	return false, nil
}

// CheckGroup reports whether the user is a member of the named group. An
// unknown user is false, not an error.
func (r *Resolver) CheckGroup(ctx context.Context, userID, groupName string) (bool, error) {
	up, ok, err := r.resolveForCheck(ctx, userID)
	if err != nil || !ok {
		return false, err
	}
	return contains(up.Groups, groupName), nil
}

// resolveForCheck loads the grant set for a derived check. A missing user
// resolves to ok=false rather than surfacing ErrNotFound, so every check
// answers a plain "no".
func (r *Resolver) resolveForCheck(ctx context.Context, userID string) (*UserPermissions, bool, error) {
	up, err := r.GetUserPermissions(ctx, userID)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return up, true, nil
}

func contains(list []string, want string) bool {
	for _, item := range list {
		if item == want {
			return true
		}
	}
	return false
}
