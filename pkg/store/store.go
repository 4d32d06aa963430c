package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/wardenauth/warden/pkg/errdefs"
)

// Postgres error codes relevant to the taxonomy.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Store handles persistence of users, access levels, groups, and memberships
type Store struct {
	db *sql.DB
}

// NewStore creates a new store over an open database handle
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for health checks
func (s *Store) DB() *sql.DB {
	return s.db
}

// wrapError converts driver errors into the shared taxonomy: unique
// violations become ErrConflict, broken references become ErrNotFound, and
// missing rows become ErrNotFound. Everything else is wrapped unchanged.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, errdefs.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w", op, errdefs.ErrConflict)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: %w", op, errdefs.ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
