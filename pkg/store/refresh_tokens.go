package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wardenauth/warden/pkg/auth"
)

// RefreshTokenStore persists refresh token records in Postgres. It
// implements auth.RefreshTokenStore.
type RefreshTokenStore struct {
	db *sql.DB
}

// NewRefreshTokenStore creates a refresh token store
func NewRefreshTokenStore(db *sql.DB) *RefreshTokenStore {
	return &RefreshTokenStore{db: db}
}

var _ auth.RefreshTokenStore = (*RefreshTokenStore)(nil)

// Store persists a refresh token record.
func (s *RefreshTokenStore) Store(ctx context.Context, rec auth.RefreshTokenRecord) error {
	query := `
		INSERT INTO refresh_tokens (token_id, user_id, expires_at)
		VALUES ($1, $2, $3)
	`

	if _, err := s.db.ExecContext(ctx, query, rec.TokenID, rec.UserID, rec.ExpiresAt); err != nil {
		return wrapError("failed to store refresh token", err)
	}
	return nil
}

// FindActive returns the record for (tokenID, userID), or errdefs.ErrNotFound.
func (s *RefreshTokenStore) FindActive(ctx context.Context, tokenID, userID string) (*auth.RefreshTokenRecord, error) {
	query := `
		SELECT token_id, user_id, expires_at
		FROM refresh_tokens
		WHERE token_id = $1 AND user_id = $2
	`

	var rec auth.RefreshTokenRecord
	err := s.db.QueryRowContext(ctx, query, tokenID, userID).Scan(&rec.TokenID, &rec.UserID, &rec.ExpiresAt)
	if err != nil {
		return nil, wrapError("failed to find refresh token", err)
	}

	return &rec, nil
}

// Consume atomically locates and deletes the record for (tokenID, userID).
// The single DELETE ... RETURNING statement is the serialization point for
// rotation: of two concurrent consumers of the same token, exactly one gets
// the row back and the other gets errdefs.ErrNotFound.
func (s *RefreshTokenStore) Consume(ctx context.Context, tokenID, userID string) (*auth.RefreshTokenRecord, error) {
	query := `
		DELETE FROM refresh_tokens
		WHERE token_id = $1 AND user_id = $2
		RETURNING token_id, user_id, expires_at
	`

	var rec auth.RefreshTokenRecord
	err := s.db.QueryRowContext(ctx, query, tokenID, userID).Scan(&rec.TokenID, &rec.UserID, &rec.ExpiresAt)
	if err != nil {
		return nil, wrapError("failed to consume refresh token", err)
	}

	return &rec, nil
}

// Delete removes a record by tokenID. Deleting an absent record is not an
// error.
func (s *RefreshTokenStore) Delete(ctx context.Context, tokenID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token_id = $1`, tokenID); err != nil {
		return wrapError("failed to delete refresh token", err)
	}
	return nil
}

// DeleteAll removes every record owned by userID. Idempotent.
func (s *RefreshTokenStore) DeleteAll(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID); err != nil {
		return wrapError("failed to delete user refresh tokens", err)
	}
	return nil
}

// DeleteExpired purges records whose expiry has passed and reports how many
// rows went away. The sweeper calls this periodically so the table stays
// bounded even for tokens that are never presented again.
func (s *RefreshTokenStore) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at < NOW()`)
	if err != nil {
		return 0, wrapError("failed to delete expired refresh tokens", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted refresh tokens: %w", err)
	}
	return affected, nil
}
