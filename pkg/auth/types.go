package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims is the payload of an access token.
type AccessClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token. TokenID is the key of the
// persisted RefreshTokenRecord; the record, not the token, is the source of
// truth for validity.
type RefreshClaims struct {
	TokenID string `json:"tokenId"`
	jwt.RegisteredClaims
}

// TokenPair is one access token and one refresh token issued together.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshTokenRecord is the durable record of an outstanding refresh token.
// It exists from issuance until consumed by rotation or explicitly revoked.
type RefreshTokenRecord struct {
	TokenID   string    `json:"tokenId"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// RefreshTokenStore is the durable store of outstanding refresh tokens.
// Implementations must make Consume a single atomic locate-and-delete so
// concurrent rotations of the same token produce exactly one winner.
type RefreshTokenStore interface {
	// Store persists a record. The token it backs must not be handed out
	// until Store returns nil.
	Store(ctx context.Context, rec RefreshTokenRecord) error

	// FindActive returns the record for (tokenID, userID), or
	// errdefs.ErrNotFound when no such record exists.
	FindActive(ctx context.Context, tokenID, userID string) (*RefreshTokenRecord, error)

	// Consume atomically locates and deletes the record, returning it, or
	// errdefs.ErrNotFound when it was already consumed, purged, or revoked.
	Consume(ctx context.Context, tokenID, userID string) (*RefreshTokenRecord, error)

	// Delete removes a record by tokenID. Deleting an absent record is not
	// an error.
	Delete(ctx context.Context, tokenID string) error

	// DeleteAll removes every record owned by userID. Idempotent.
	DeleteAll(ctx context.Context, userID string) error
}

// Identity is the authenticated caller attached to the request context by
// the authentication middleware.
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`

	// TokenHash is the SHA-256 hex of the presented access token. It is the
	// revocation-registry key for this token.
	TokenHash string `json:"-"`

	// ExpiresAt is the token's natural expiry; the remaining lifetime bounds
	// the blacklist TTL on logout.
	ExpiresAt time.Time `json:"-"`
}
