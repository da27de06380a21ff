package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type operationRequest struct {
	Description string `json:"description"`
}

func (s *Server) handleListOperations(c *gin.Context) {
	ticketID, ok := parseID(c, "id")
	if !ok {
		return
	}
	ops, err := s.svc.ListOperations(c.Request.Context(), callerID(c), ticketID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, ops)
}

// handleCreateOperation records an admin action on a ticket.
func (s *Server) handleCreateOperation(c *gin.Context) {
	ticketID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req operationRequest
	if !bindJSON(c, &req) {
		return
	}
	op, err := s.svc.AddOperation(c.Request.Context(), callerID(c), ticketID, req.Description)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, op)
}

func (s *Server) handleDeleteOperation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.svc.DeleteOperation(c.Request.Context(), callerID(c), id); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, deleted)
}
