package api

import (
	"net/http"

	"github.com/wardenauth/warden/pkg/httputil"
	"github.com/wardenauth/warden/pkg/store"
)

type createAccessLevelRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

// createAccessLevel handles POST /access-levels
func (s *Server) createAccessLevel(w http.ResponseWriter, r *http.Request) {
	var req createAccessLevelRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Name, "name") {
		return
	}
	if req.Permissions == nil {
		req.Permissions = []string{}
	}

	level := &store.AccessLevel{
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	}
	if err := s.store.CreateAccessLevel(r.Context(), level); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, level)
}

// getAccessLevel handles GET /access-levels/{id}
func (s *Server) getAccessLevel(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	level, err := s.store.GetAccessLevel(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, level)
}

// listAccessLevels handles GET /access-levels
func (s *Server) listAccessLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := s.store.ListAccessLevels(r.Context())
	if err != nil {
		s.logger.FromContext(r.Context()).WithError(err).Error("listing access levels failed")
		httputil.WriteError(w, err)
		return
	}
	if levels == nil {
		levels = []store.AccessLevel{}
	}

	httputil.WriteSuccess(w, levels)
}

type updateAccessLevelRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// updateAccessLevel handles PUT /access-levels/{id}
func (s *Server) updateAccessLevel(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	var req updateAccessLevelRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Name == nil && req.Description == nil && req.Permissions == nil {
		httputil.WriteBadRequest(w, "nothing to update")
		return
	}

	level, err := s.store.UpdateAccessLevel(r.Context(), id, store.AccessLevelUpdate{
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, level)
}

// deleteAccessLevel handles DELETE /access-levels/{id}
func (s *Server) deleteAccessLevel(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	if err := s.store.DeleteAccessLevel(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}
