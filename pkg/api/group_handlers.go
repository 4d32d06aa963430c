package api

import (
	"net/http"

	"github.com/wardenauth/warden/pkg/httputil"
	"github.com/wardenauth/warden/pkg/store"
)

type createGroupRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	AccessLevelID string `json:"accessLevelId"`
}

// createGroup handles POST /groups
func (s *Server) createGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Name, "name") {
		return
	}
	if !httputil.RequireNonEmpty(w, req.AccessLevelID, "accessLevelId") {
		return
	}

	group := &store.UserGroup{
		Name:          req.Name,
		Description:   req.Description,
		AccessLevelID: req.AccessLevelID,
	}
	if err := s.store.CreateGroup(r.Context(), group); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, group)
}

// getGroup handles GET /groups/{id}
func (s *Server) getGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	group, err := s.store.GetGroup(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, group)
}

// listGroups handles GET /groups
func (s *Server) listGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.store.ListGroups(r.Context())
	if err != nil {
		s.logger.FromContext(r.Context()).WithError(err).Error("listing groups failed")
		httputil.WriteError(w, err)
		return
	}
	if groups == nil {
		groups = []store.UserGroup{}
	}

	httputil.WriteSuccess(w, groups)
}

type updateGroupRequest struct {
	Name          *string `json:"name,omitempty"`
	Description   *string `json:"description,omitempty"`
	AccessLevelID *string `json:"accessLevelId,omitempty"`
}

// updateGroup handles PUT /groups/{id}
func (s *Server) updateGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	var req updateGroupRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Name == nil && req.Description == nil && req.AccessLevelID == nil {
		httputil.WriteBadRequest(w, "nothing to update")
		return
	}

	group, err := s.store.UpdateGroup(r.Context(), id, store.GroupUpdate{
		Name:          req.Name,
		Description:   req.Description,
		AccessLevelID: req.AccessLevelID,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, group)
}

// deleteGroup handles DELETE /groups/{id}
func (s *Server) deleteGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	if err := s.store.DeleteGroup(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

// listGroupMembers handles GET /groups/{id}/members
func (s *Server) listGroupMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	members, err := s.store.ListGroupMembers(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if members == nil {
		members = []store.GroupMembership{}
	}

	httputil.WriteSuccess(w, members)
}

type addMemberRequest struct {
	UserID string `json:"userId"`
}

// addGroupMember handles POST /groups/{id}/members
func (s *Server) addGroupMember(w http.ResponseWriter, r *http.Request) {
	groupID, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	var req addMemberRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.UserID, "userId") {
		return
	}

	membership, err := s.store.AddGroupMember(r.Context(), req.UserID, groupID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, membership)
}

// removeGroupMember handles DELETE /groups/{id}/members/{userId}
func (s *Server) removeGroupMember(w http.ResponseWriter, r *http.Request) {
	groupID, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	userID, ok := httputil.ParsePathStringOrError(w, r, "userId")
	if !ok {
		return
	}

	if err := s.store.RemoveGroupMember(r.Context(), userID, groupID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}
