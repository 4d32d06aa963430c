package api

import (
	"net/http"

	"github.com/wardenauth/warden/pkg/errdefs"
	"github.com/wardenauth/warden/pkg/httputil"
	"github.com/wardenauth/warden/pkg/middleware"
	"github.com/wardenauth/warden/pkg/store"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         *store.User `json:"user,omitempty"`
}

// login handles POST /auth/login
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Email, "email") {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Password, "password") {
		return
	}

	pair, user, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.countLogin("failure")
		if !errdefs.IsInvalidCredentials(err) {
			s.logger.FromContext(r.Context()).WithError(err).Error("login failed")
		}
		httputil.WriteError(w, err)
		return
	}

	s.countLogin("success")
	s.countTokens()
	httputil.WriteSuccess(w, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// refresh handles POST /auth/refresh
func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.RefreshToken, "refreshToken") {
		return
	}

	pair, err := s.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		s.countRefresh("failure")
		if !errdefs.IsInvalidToken(err) {
			s.logger.FromContext(r.Context()).WithError(err).Error("refresh failed")
		}
		httputil.WriteError(w, err)
		return
	}

	s.countRefresh("success")
	s.countTokens()
	httputil.WriteSuccess(w, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// logout handles POST /auth/logout
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	token, _ := middleware.ExtractBearerToken(r)

	if err := s.auth.Logout(r.Context(), identity.UserID, token); err != nil {
		s.logger.FromContext(r.Context()).WithError(err).Error("logout failed")
		httputil.WriteError(w, err)
		return
	}

	if s.metrics != nil {
		s.metrics.LogoutsTotal.Inc()
	}
	httputil.WriteSuccess(w, map[string]string{"status": "logged out"})
}

// profile handles GET /auth/profile
func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	profile, err := s.auth.Profile(r.Context(), identity.UserID)
	if err != nil {
		if errdefs.IsNotFound(err) {
			// Token verified but the account is gone.
			httputil.WriteUnauthorized(w, "invalid or expired token")
			return
		}
		s.logger.FromContext(r.Context()).WithError(err).Error("profile lookup failed")
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, profile)
}

type checkPermissionRequest struct {
	Permission  string   `json:"permission,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	Group       string   `json:"group,omitempty"`
}

type checkResponse struct {
	Allowed bool `json:"allowed"`
}

func (s *Server) writeCheckResult(w http.ResponseWriter, r *http.Request, kind string, allowed bool, err error) {
	if err != nil {
		s.logger.FromContext(r.Context()).WithError(err).Error("permission check failed")
		httputil.WriteError(w, err)
		return
	}

	if s.metrics != nil {
		result := "denied"
		if allowed {
			result = "allowed"
		}
		s.metrics.PermissionChecksTotal.WithLabelValues(kind, result).Inc()
	}
	httputil.WriteSuccess(w, checkResponse{Allowed: allowed})
}

// checkPermission handles POST /auth/check-permission
func (s *Server) checkPermission(w http.ResponseWriter, r *http.Request) {
	var req checkPermissionRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Permission, "permission") {
		return
	}

	identity := middleware.GetIdentity(r.Context())
	allowed, err := s.resolver.CheckPermission(r.Context(), identity.UserID, req.Permission)
	s.writeCheckResult(w, r, "permission", allowed, err)
}

// checkPermissions handles POST /auth/check-permissions
func (s *Server) checkPermissions(w http.ResponseWriter, r *http.Request) {
	var req checkPermissionRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if len(req.Permissions) == 0 {
		httputil.WriteBadRequest(w, "permissions is required")
		return
	}

	identity := middleware.GetIdentity(r.Context())
	allowed, err := s.resolver.CheckPermissions(r.Context(), identity.UserID, req.Permissions)
	s.writeCheckResult(w, r, "permissions", allowed, err)
}

// checkAnyPermission handles POST /auth/check-any-permission
func (s *Server) checkAnyPermission(w http.ResponseWriter, r *http.Request) {
	var req checkPermissionRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if len(req.Permissions) == 0 {
		httputil.WriteBadRequest(w, "permissions is required")
		return
	}

	identity := middleware.GetIdentity(r.Context())
	allowed, err := s.resolver.CheckAnyPermission(r.Context(), identity.UserID, req.Permissions)
	s.writeCheckResult(w, r, "any-permission", allowed, err)
}

// checkGroup handles POST /auth/check-group
func (s *Server) checkGroup(w http.ResponseWriter, r *http.Request) {
	var req checkPermissionRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Group, "group") {
		return
	}

	identity := middleware.GetIdentity(r.Context())
	allowed, err := s.resolver.CheckGroup(r.Context(), identity.UserID, req.Group)
	s.writeCheckResult(w, r, "group", allowed, err)
}

func (s *Server) countLogin(status string) {
	if s.metrics != nil {
		s.metrics.LoginsTotal.WithLabelValues(status).Inc()
	}
}

func (s *Server) countRefresh(status string) {
	if s.metrics != nil {
		s.metrics.TokenRefreshesTotal.WithLabelValues(status).Inc()
	}
}

func (s *Server) countTokens() {
	if s.metrics != nil {
		s.metrics.TokensIssuedTotal.WithLabelValues("access").Inc()
		s.metrics.TokensIssuedTotal.WithLabelValues("refresh").Inc()
	}
}
