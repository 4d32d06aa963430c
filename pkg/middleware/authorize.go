package middleware

import (
	"context"
	"net/http"

	"github.com/wardenauth/warden/pkg/httputil"
)

// PermissionChecker answers authorization questions for a user. Implemented
// by permissions.Resolver.
type PermissionChecker interface {
	CheckPermission(ctx context.Context, userID, permission string) (bool, error)
	CheckPermissions(ctx context.Context, userID string, required []string) (bool, error)
	CheckAnyPermission(ctx context.Context, userID string, candidates []string) (bool, error)
	CheckGroup(ctx context.Context, userID, groupName string) (bool, error)
}

// Authorizer builds route guards on top of a PermissionChecker. Every guard
// assumes Authenticator already ran; an absent identity is treated as a
// missing login, not as a permission failure.
type Authorizer struct {
	checker PermissionChecker
}

// NewAuthorizer creates authorization middleware factories.
func NewAuthorizer(checker PermissionChecker) *Authorizer {
	return &Authorizer{checker: checker}
}

// RequirePermission gates a route on a single permission.
func (a *Authorizer) RequirePermission(permission string) func(http.Handler) http.Handler {
	return a.guard(func(ctx context.Context, userID string) (bool, error) {
		return a.checker.CheckPermission(ctx, userID, permission)
	})
}

// RequirePermissions gates a route on all of the listed permissions.
func (a *Authorizer) RequirePermissions(required ...string) func(http.Handler) http.Handler {
	return a.guard(func(ctx context.Context, userID string) (bool, error) {
		return a.checker.CheckPermissions(ctx, userID, required)
	})
}

// RequireAnyPermission gates a route on at least one of the listed
// permissions.
func (a *Authorizer) RequireAnyPermission(candidates ...string) func(http.Handler) http.Handler {
	return a.guard(func(ctx context.Context, userID string) (bool, error) {
		return a.checker.CheckAnyPermission(ctx, userID, candidates)
	})
}

// RequireGroup gates a route on membership in the named group.
func (a *Authorizer) RequireGroup(groupName string) func(http.Handler) http.Handler {
	return a.guard(func(ctx context.Context, userID string) (bool, error) {
		return a.checker.CheckGroup(ctx, userID, groupName)
	})
}

func (a *Authorizer) guard(allowed func(ctx context.Context, userID string) (bool, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentity(r.Context())
			if identity == nil {
				httputil.WriteUnauthorized(w, "authentication required")
				return
			}

			// A user deleted after the token was issued resolves to false
			// here, not to an error.
			ok, err := allowed(r.Context(), identity.UserID)
			if err != nil {
				httputil.WriteInternalError(w)
				return
			}
			if !ok {
				httputil.WriteForbidden(w, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
