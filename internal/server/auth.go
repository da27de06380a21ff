package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"helpdesk/internal/models"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// handleRegister opens a regular account.
func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := s.svc.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user":    models.UserRef{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

// handleLogin exchanges credentials for a session token, returned both in
// the body and as a cookie.
func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := s.svc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}
	token, err := s.sessions.Issue(user.ID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.opts.CookieName, token, int(s.sessions.TTL().Seconds()), "/", "", s.opts.CookieSecure, true)
	respondSuccess(c, http.StatusOK, gin.H{"token": token, "user": user})
}

// handleLogout clears the session cookie. Tokens are stateless, so a copy
// kept by the client stays valid until it expires.
func (s *Server) handleLogout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.opts.CookieName, "", -1, "/", "", s.opts.CookieSecure, true)
	respondSuccess(c, http.StatusOK, deleted)
}

// handleMe returns the authenticated user.
func (s *Server) handleMe(c *gin.Context) {
	user, err := s.svc.Caller(c.Request.Context(), callerID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, user)
}
