package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wardenauth/warden/pkg/httputil"
	"github.com/wardenauth/warden/pkg/middleware"
	"github.com/wardenauth/warden/pkg/observability"
	"github.com/wardenauth/warden/pkg/permissions"
	"github.com/wardenauth/warden/pkg/service"
	"github.com/wardenauth/warden/pkg/store"
)

// Admin permissions gating the management APIs.
const (
	PermManageUsers        = "users.manage"
	PermManageGroups       = "groups.manage"
	PermManageAccessLevels = "access-levels.manage"
)

// maxBodyBytes bounds request bodies; the largest legitimate payload is a
// permission list, far below this.
const maxBodyBytes = 1 << 20

// Server is the HTTP API server.
type Server struct {
	router         *mux.Router
	handler        http.Handler
	logger         *observability.Logger
	metrics        *observability.Metrics
	auth           *service.AuthService
	resolver       *permissions.Resolver
	store          *store.Store
	authn          *middleware.Authenticator
	authz          *middleware.Authorizer
	allowedOrigins []string
}

// NewServer assembles the router and the middleware chain. An empty origin
// list disables CORS handling.
func NewServer(
	logger *observability.Logger,
	metrics *observability.Metrics,
	authService *service.AuthService,
	resolver *permissions.Resolver,
	st *store.Store,
	authn *middleware.Authenticator,
	allowedOrigins []string,
) *Server {
	s := &Server{
		router:         mux.NewRouter(),
		logger:         logger,
		metrics:        metrics,
		auth:           authService,
		resolver:       resolver,
		store:          st,
		authn:          authn,
		authz:          middleware.NewAuthorizer(resolver),
		allowedOrigins: allowedOrigins,
	}

	s.setupRoutes()

	// CORS wraps the router itself so preflight OPTIONS requests are
	// answered even though no route registers the OPTIONS method.
	s.handler = s.router
	if len(allowedOrigins) > 0 {
		s.handler = httputil.CORSMiddleware(allowedOrigins)(s.router)
	}
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	base := []mux.MiddlewareFunc{
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(s.logger.Slog()),
		httputil.RecoveryMiddleware(s.logger.Slog()),
		httputil.MaxBytesMiddleware(maxBodyBytes),
	}
	if s.metrics != nil {
		base = append(base, s.metrics.Middleware)
	}
	s.router.Use(base...)

	// Public auth routes
	s.router.HandleFunc("/auth/login", s.login).Methods("POST")
	s.router.HandleFunc("/auth/refresh", s.refresh).Methods("POST")

	// Authenticated auth routes
	authed := s.router.PathPrefix("/auth").Subrouter()
	authed.Use(s.authn.Handler)
	authed.HandleFunc("/logout", s.logout).Methods("POST")
	authed.HandleFunc("/profile", s.profile).Methods("GET")
	authed.HandleFunc("/check-permission", s.checkPermission).Methods("POST")
	authed.HandleFunc("/check-permissions", s.checkPermissions).Methods("POST")
	authed.HandleFunc("/check-any-permission", s.checkAnyPermission).Methods("POST")
	authed.HandleFunc("/check-group", s.checkGroup).Methods("POST")

	// User management
	users := s.router.PathPrefix("/users").Subrouter()
	users.Use(s.authn.Handler, s.authz.RequirePermission(PermManageUsers))
	users.HandleFunc("", s.createUser).Methods("POST")
	users.HandleFunc("", s.listUsers).Methods("GET")
	users.HandleFunc("/{id}", s.getUser).Methods("GET")
	users.HandleFunc("/{id}", s.updateUser).Methods("PUT")
	users.HandleFunc("/{id}", s.deleteUser).Methods("DELETE")
	users.HandleFunc("/{id}/permissions", s.getUserPermissions).Methods("GET")

	// Group management
	groups := s.router.PathPrefix("/groups").Subrouter()
	groups.Use(s.authn.Handler, s.authz.RequirePermission(PermManageGroups))
	groups.HandleFunc("", s.createGroup).Methods("POST")
	groups.HandleFunc("", s.listGroups).Methods("GET")
	groups.HandleFunc("/{id}", s.getGroup).Methods("GET")
	groups.HandleFunc("/{id}", s.updateGroup).Methods("PUT")
	groups.HandleFunc("/{id}", s.deleteGroup).Methods("DELETE")
	groups.HandleFunc("/{id}/members", s.listGroupMembers).Methods("GET")
	groups.HandleFunc("/{id}/members", s.addGroupMember).Methods("POST")
	groups.HandleFunc("/{id}/members/{userId}", s.removeGroupMember).Methods("DELETE")

	// Access level management
	levels := s.router.PathPrefix("/access-levels").Subrouter()
	levels.Use(s.authn.Handler, s.authz.RequirePermission(PermManageAccessLevels))
	levels.HandleFunc("", s.createAccessLevel).Methods("POST")
	levels.HandleFunc("", s.listAccessLevels).Methods("GET")
	levels.HandleFunc("/{id}", s.getAccessLevel).Methods("GET")
	levels.HandleFunc("/{id}", s.updateAccessLevel).Methods("PUT")
	levels.HandleFunc("/{id}", s.deleteAccessLevel).Methods("DELETE")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
