package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type commentRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleListComments(c *gin.Context) {
	ticketID, ok := parseID(c, "id")
	if !ok {
		return
	}
	comments, err := s.svc.ListComments(c.Request.Context(), callerID(c), ticketID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, comments)
}

// handleCreateComment appends a comment to a ticket.
func (s *Server) handleCreateComment(c *gin.Context) {
	ticketID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req commentRequest
	if !bindJSON(c, &req) {
		return
	}
	comment, err := s.svc.AddComment(c.Request.Context(), callerID(c), ticketID, req.Content)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, comment)
}

// handleUpdateComment edits a comment. Only its author may do so.
func (s *Server) handleUpdateComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req commentRequest
	if !bindJSON(c, &req) {
		return
	}
	comment, err := s.svc.UpdateComment(c.Request.Context(), callerID(c), id, req.Content)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, comment)
}

func (s *Server) handleDeleteComment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.svc.DeleteComment(c.Request.Context(), callerID(c), id); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, deleted)
}
