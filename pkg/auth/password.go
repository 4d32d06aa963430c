package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/wardenauth/warden/pkg/errdefs"
)

// DefaultBcryptCost is deliberately above bcrypt's own default. Hashing a
// password at this cost takes on the order of hundreds of milliseconds; each
// call runs on its own request goroutine and never blocks other connections.
const DefaultBcryptCost = 12

// PasswordHasher hashes and verifies passwords with bcrypt.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a hasher with the given work factor. Costs below
// bcrypt's minimum fall back to DefaultBcryptCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns the irreversible bcrypt hash of a plaintext password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Compare verifies a plaintext password against a stored hash. A mismatch is
// reported as errdefs.ErrInvalidCredentials; any other failure (for example
// a corrupt hash) is wrapped and surfaced as-is.
func (h *PasswordHasher) Compare(password, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return errdefs.ErrInvalidCredentials
	}
	return fmt.Errorf("failed to compare password: %w", err)
}
