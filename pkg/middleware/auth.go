package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/wardenauth/warden/pkg/auth"
	"github.com/wardenauth/warden/pkg/contextkeys"
	"github.com/wardenauth/warden/pkg/httputil"
)

// TokenVerifier verifies access tokens. Implemented by auth.TokenService.
type TokenVerifier interface {
	VerifyAccessToken(tokenString string) (*auth.AccessClaims, error)
}

// RevocationChecker reports whether an access token hash was revoked.
// Implemented by cache.RevocationRegistry.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenHash string) (bool, error)
}

// Authenticator verifies Bearer tokens and populates the request context
// with the caller's identity.
type Authenticator struct {
	verifier TokenVerifier
	registry RevocationChecker
}

// NewAuthenticator creates authentication middleware.
func NewAuthenticator(verifier TokenVerifier, registry RevocationChecker) *Authenticator {
	return &Authenticator{verifier: verifier, registry: registry}
}

// Handler wraps an HTTP handler with authentication. A missing header, a
// malformed header, a bad token, and a revoked token all yield the same
// 401 response body.
func (a *Authenticator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := ExtractBearerToken(r)
		if !ok {
			httputil.WriteUnauthorized(w, "invalid or expired token")
			return
		}

		claims, err := a.verifier.VerifyAccessToken(token)
		if err != nil {
			httputil.WriteUnauthorized(w, "invalid or expired token")
			return
		}

		hash := auth.HashToken(token)
		revoked, err := a.registry.IsRevoked(r.Context(), hash)
		if err != nil {
			// The registry is the only authority on revocation. Failing
			// open would resurrect logged-out tokens.
			httputil.WriteServiceUnavailable(w, "authorization unavailable")
			return
		}
		if revoked {
			httputil.WriteUnauthorized(w, "invalid or expired token")
			return
		}

		identity := &auth.Identity{
			UserID:    claims.Subject,
			Email:     claims.Email,
			Name:      claims.Name,
			TokenHash: hash,
			ExpiresAt: claims.ExpiresAt.Time,
		}

		ctx := contextkeys.WithIdentity(r.Context(), identity)
		ctx = contextkeys.WithUserID(ctx, identity.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ExtractBearerToken pulls the token out of the Authorization header.
func ExtractBearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// GetIdentity extracts the authenticated identity from the request context.
func GetIdentity(ctx context.Context) *auth.Identity {
	identity, ok := ctx.Value(contextkeys.IdentityKey).(*auth.Identity)
	if !ok {
		return nil
	}
	return identity
}
