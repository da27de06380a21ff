package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"helpdesk/internal/helpdesk"
)

type userRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"isAdmin"`
}

type userPatch struct {
	Name    *string `json:"name"`
	IsAdmin *bool   `json:"isAdmin"`
}

// handleListUsers returns every account. Admin only.
func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.svc.ListUsers(c.Request.Context(), callerID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, users)
}

func (s *Server) handleCreateUser(c *gin.Context) {
	var req userRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := s.svc.CreateUser(c.Request.Context(), callerID(c), req.Name, req.Email, req.Password, req.IsAdmin)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, user)
}

func (s *Server) handleUpdateUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req userPatch
	if !bindJSON(c, &req) {
		return
	}
	user, err := s.svc.UpdateUser(c.Request.Context(), callerID(c), id, helpdesk.UserChanges{Name: req.Name, IsAdmin: req.IsAdmin})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, user)
}

// handleDeleteUser removes an account that owns nothing.
func (s *Server) handleDeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.svc.DeleteUser(c.Request.Context(), callerID(c), id); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, deleted)
}
