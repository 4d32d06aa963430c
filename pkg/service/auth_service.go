package service

import (
	"context"
	"fmt"
	"time"

	"github.com/wardenauth/warden/pkg/auth"
	"github.com/wardenauth/warden/pkg/errdefs"
	"github.com/wardenauth/warden/pkg/permissions"
	"github.com/wardenauth/warden/pkg/store"
)

// UserStore is the slice of the persistence layer the auth flows need.
type UserStore interface {
	GetUser(ctx context.Context, id string) (*store.User, error)
	GetUserByEmail(ctx context.Context, email string) (*store.User, error)
}

// PermissionReader resolves effective permissions for profile responses.
type PermissionReader interface {
	GetUserPermissions(ctx context.Context, userID string) (*permissions.UserPermissions, error)
}

// Revoker records revoked access tokens.
type Revoker interface {
	Revoke(ctx context.Context, tokenHash string, ttl time.Duration) error
}

// Profile is the authenticated user's own view: account fields plus the
// resolved authorization snapshot.
type Profile struct {
	User        *store.User `json:"user"`
	Permissions []string    `json:"permissions"`
	Groups      []string    `json:"groups"`
}

// AuthService drives the credential and token lifecycle.
type AuthService struct {
	users    UserStore
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenService
	perms    PermissionReader
	registry Revoker
}

// NewAuthService wires the auth flows together.
func NewAuthService(users UserStore, hasher *auth.PasswordHasher, tokens *auth.TokenService, perms PermissionReader, registry Revoker) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		perms:    perms,
		registry: registry,
	}
}

// Login verifies credentials and issues a token pair. Unknown email,
// wrong password, and deactivated account all collapse into
// errdefs.ErrInvalidCredentials so a caller cannot probe which one it was.
func (s *AuthService) Login(ctx context.Context, email, password string) (*auth.TokenPair, *store.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return nil, nil, errdefs.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to load user for login: %w", err)
	}

	if !user.IsActive {
		return nil, nil, errdefs.ErrInvalidCredentials
	}

	if err := s.hasher.Compare(password, user.PasswordHash); err != nil {
		if errdefs.IsInvalidCredentials(err) {
			return nil, nil, errdefs.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to compare password: %w", err)
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// Refresh rotates a refresh token: the presented token is consumed
// atomically, the user re-checked, and a brand new pair issued. A token
// that was already rotated, a deleted user, or a deactivated account all
// yield errdefs.ErrInvalidToken.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.tokens.ConsumeRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUser(ctx, claims.Subject)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return nil, errdefs.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load user for refresh: %w", err)
	}

	if !user.IsActive {
		return nil, errdefs.ErrInvalidToken
	}

	return s.issuePair(ctx, user)
}

// Logout revokes every refresh token the user holds and blacklists the
// presented access token for its remaining lifetime. An access token that
// no longer verifies needs no registry entry.
func (s *AuthService) Logout(ctx context.Context, userID, accessToken string) error {
	if err := s.tokens.RevokeAll(ctx, userID); err != nil {
		return err
	}

	claims, err := s.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.registry.Revoke(ctx, auth.HashToken(accessToken), ttl); err != nil {
		return fmt.Errorf("failed to blacklist access token: %w", err)
	}
	return nil
}

// Profile returns the user's account fields together with the resolved
// permission set and group names.
func (s *AuthService) Profile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	up, err := s.perms.GetUserPermissions(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Profile{
		User:        user,
		Permissions: up.Permissions,
		Groups:      up.Groups,
	}, nil
}

func (s *AuthService) issuePair(ctx context.Context, user *store.User) (*auth.TokenPair, error) {
	accessToken, err := s.tokens.IssueAccessToken(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokens.IssueRefreshToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &auth.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
