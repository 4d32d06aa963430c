// Package errdefs defines the error taxonomy shared by the warden core.
//
// Core packages return these sentinels, usually wrapped with context via
// fmt.Errorf and %w. The HTTP boundary is the only place that translates
// them into status codes; no core package knows about HTTP.
package errdefs

import "errors"

var (
	// ErrInvalidCredentials is returned by login when the email is unknown,
	// the account is inactive, or the password does not match. Callers get
	// the same error in all three cases.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is returned for any token that cannot be accepted:
	// bad signature, malformed input, expired, or a refresh token whose
	// record was already consumed or revoked.
	ErrInvalidToken = errors.New("invalid token")

	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned on unique-constraint violations such as a
	// duplicate email or a duplicate group membership.
	ErrConflict = errors.New("conflict")

	// ErrForbidden is returned when an authenticated caller lacks the
	// required permission or group.
	ErrForbidden = errors.New("forbidden")
)

// IsInvalidCredentials reports whether err wraps ErrInvalidCredentials.
func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}

// IsInvalidToken reports whether err wraps ErrInvalidToken.
func IsInvalidToken(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether err wraps ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsForbidden reports whether err wraps ErrForbidden.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}
