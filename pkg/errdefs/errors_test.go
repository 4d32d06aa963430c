package errdefs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHelpersMatchWrappedErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		check    func(error) bool
		expected bool
	}{
		{"invalid credentials direct", ErrInvalidCredentials, IsInvalidCredentials, true},
		{"invalid credentials wrapped", fmt.Errorf("login: %w", ErrInvalidCredentials), IsInvalidCredentials, true},
		{"invalid token wrapped", fmt.Errorf("verify: %w", ErrInvalidToken), IsInvalidToken, true},
		{"not found wrapped twice", fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", ErrNotFound)), IsNotFound, true},
		{"conflict wrapped", fmt.Errorf("create user: %w", ErrConflict), IsConflict, true},
		{"forbidden wrapped", fmt.Errorf("guard: %w", ErrForbidden), IsForbidden, true},
		{"unrelated error", errors.New("boom"), IsNotFound, false},
		{"nil error", nil, IsInvalidToken, false},
		{"wrong sentinel", fmt.Errorf("x: %w", ErrConflict), IsNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.check(tt.err))
		})
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrInvalidCredentials,
		ErrInvalidToken,
		ErrNotFound,
		ErrConflict,
		ErrForbidden,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v must not match %v", a, b)
		}
	}
}
