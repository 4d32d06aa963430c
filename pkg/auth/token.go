package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/wardenauth/warden/pkg/errdefs"
)

// MinKeyLength is the minimum accepted signing key size in bytes.
const MinKeyLength = 32

// TokenConfig holds token issuance parameters.
type TokenConfig struct {
	// SigningKey is the symmetric HMAC key, at least MinKeyLength bytes.
	SigningKey []byte
	// Issuer is stamped into and required from every token.
	Issuer string
	// AccessTTL bounds access-token lifetime.
	AccessTTL time.Duration
	// RefreshTTL bounds refresh-token lifetime.
	RefreshTTL time.Duration
}

// TokenService issues and verifies access and refresh tokens.
type TokenService struct {
	key        []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	tokens     RefreshTokenStore

	// now is swappable for tests.
	now func() time.Time
}

// NewTokenService creates a token service backed by the given refresh-token
// store. The signing key must be at least MinKeyLength bytes.
func NewTokenService(cfg TokenConfig, tokens RefreshTokenStore) (*TokenService, error) {
	if len(cfg.SigningKey) < MinKeyLength {
		return nil, fmt.Errorf("signing key must be at least %d bytes, got %d", MinKeyLength, len(cfg.SigningKey))
	}
	if cfg.Issuer == "" {
		return nil, fmt.Errorf("issuer is required")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, fmt.Errorf("token TTLs must be positive")
	}

	return &TokenService{
		key:        cfg.SigningKey,
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		tokens:     tokens,
		now:        time.Now,
	}, nil
}

// IssueAccessToken signs a short-lived access token for the user. Pure
// signing; no storage side effects.
func (s *TokenService) IssueAccessToken(userID, email, name string) (string, error) {
	now := s.now()
	claims := AccessClaims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return token, nil
}

// IssueRefreshToken signs a long-lived refresh token with a fresh unique
// tokenId and persists its RefreshTokenRecord. The record is durable before
// the token string is returned, so a caller never holds a token whose record
// could be missing.
func (s *TokenService) IssueRefreshToken(ctx context.Context, userID string) (string, error) {
	tokenID := uuid.NewString()
	now := s.now()
	expiresAt := now.Add(s.refreshTTL)

	claims := RefreshClaims{
		TokenID: tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	rec := RefreshTokenRecord{
		TokenID:   tokenID,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
	if err := s.tokens.Store(ctx, rec); err != nil {
		return "", fmt.Errorf("failed to persist refresh token record: %w", err)
	}

	return token, nil
}

// VerifyAccessToken checks signature, issuer, and expiry. Any failure,
// including malformed input, is reported as errdefs.ErrInvalidToken.
func (s *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errdefs.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, errdefs.ErrInvalidToken
	}
	return claims, nil
}

// VerifyRefreshToken checks signature and expiry, then requires a live
// RefreshTokenRecord for the (tokenId, sub) pair. A record that exists but
// has expired is purged on the spot and the token rejected.
func (s *TokenService) VerifyRefreshToken(ctx context.Context, tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errdefs.ErrInvalidToken, err)
	}
	if !token.Valid || claims.TokenID == "" {
		return nil, errdefs.ErrInvalidToken
	}

	rec, err := s.tokens.FindActive(ctx, claims.TokenID, claims.Subject)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return nil, errdefs.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to look up refresh token record: %w", err)
	}

	if rec.ExpiresAt.Before(s.now()) {
		if err := s.tokens.Delete(ctx, claims.TokenID); err != nil {
			return nil, fmt.Errorf("failed to purge expired refresh token record: %w", err)
		}
		return nil, errdefs.ErrInvalidToken
	}

	return claims, nil
}

// ConsumeRefreshToken verifies a refresh token and atomically retires its
// record in the same step. The conditional delete is the serialization
// point for rotation: of two concurrent presentations of the same token,
// exactly one consumes the record and the other gets ErrInvalidToken.
func (s *TokenService) ConsumeRefreshToken(ctx context.Context, tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errdefs.ErrInvalidToken, err)
	}
	if !token.Valid || claims.TokenID == "" {
		return nil, errdefs.ErrInvalidToken
	}

	rec, err := s.tokens.Consume(ctx, claims.TokenID, claims.Subject)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return nil, errdefs.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to consume refresh token record: %w", err)
	}

	if rec.ExpiresAt.Before(s.now()) {
		return nil, errdefs.ErrInvalidToken
	}

	return claims, nil
}

// Revoke deletes a refresh token record by tokenId. Idempotent.
func (s *TokenService) Revoke(ctx context.Context, tokenID string) error {
	if err := s.tokens.Delete(ctx, tokenID); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAll deletes every refresh token record owned by the user, so no
// previously issued refresh token can rotate again. Idempotent.
func (s *TokenService) RevokeAll(ctx context.Context, userID string) error {
	if err := s.tokens.DeleteAll(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke user refresh tokens: %w", err)
	}
	return nil
}

// keyFunc rejects any signing method other than HMAC before handing out the
// key, so a token cannot downgrade to "none" or switch to an asymmetric
// scheme.
func (s *TokenService) keyFunc(t *jwt.Token) (interface{}, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return s.key, nil
}

// HashToken computes the SHA-256 hex of a token string. The hash is the
// revocation-registry key: access tokens carry no tokenId, and hashing lets
// logout blacklist a token without storing the token itself.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
