package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/wardenauth/warden/pkg/errdefs"
)

func TestPasswordHasher_RoundTrip(t *testing.T) {
	// MinCost keeps the test fast; production uses DefaultBcryptCost.
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash must not equal the plaintext")
	}

	if err := h.Compare("correct horse battery staple", hash); err != nil {
		t.Errorf("Compare failed for correct password: %v", err)
	}
}

func TestPasswordHasher_Mismatch(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("right password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	err = h.Compare("wrong password", hash)
	if !errdefs.IsInvalidCredentials(err) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestPasswordHasher_CorruptHash(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	err := h.Compare("anything", "not-a-bcrypt-hash")
	if err == nil {
		t.Fatal("expected error for corrupt hash")
	}
	if errdefs.IsInvalidCredentials(err) {
		t.Error("corrupt hash must not masquerade as a credential mismatch")
	}
}

func TestNewPasswordHasher_CostFloor(t *testing.T) {
	h := NewPasswordHasher(0)
	if h.cost != DefaultBcryptCost {
		t.Errorf("expected fallback to cost %d, got %d", DefaultBcryptCost, h.cost)
	}
}
