package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"helpdesk/internal/helpdesk"
	"helpdesk/internal/models"
)

var lookupPaths = map[string]models.LookupKind{
	"/categories": models.KindCategory,
	"/priorities": models.KindPriority,
	"/statuses":   models.KindStatus,
}

type lookupRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type lookupPatch struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

// handleListLookups returns a reference table, optionally filtered by ?name=.
func (s *Server) handleListLookups(kind models.LookupKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		lookups, err := s.svc.ListLookups(c.Request.Context(), kind, c.Query("name"))
		if err != nil {
			s.respondError(c, err)
			return
		}
		respondSuccess(c, http.StatusOK, lookups)
	}
}

func (s *Server) handleCreateLookup(kind models.LookupKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req lookupRequest
		if !bindJSON(c, &req) {
			return
		}
		l, err := s.svc.CreateLookup(c.Request.Context(), callerID(c), kind, req.Name, req.Color)
		if err != nil {
			s.respondError(c, err)
			return
		}
		respondSuccess(c, http.StatusCreated, l)
	}
}

func (s *Server) handleUpdateLookup(kind models.LookupKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		var req lookupPatch
		if !bindJSON(c, &req) {
			return
		}
		l, err := s.svc.UpdateLookup(c.Request.Context(), callerID(c), kind, id, helpdesk.LookupChanges{Name: req.Name, Color: req.Color})
		if err != nil {
			s.respondError(c, err)
			return
		}
		respondSuccess(c, http.StatusOK, l)
	}
}

// handleDeleteLookup removes a row that no ticket references.
func (s *Server) handleDeleteLookup(kind models.LookupKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		if err := s.svc.DeleteLookup(c.Request.Context(), callerID(c), kind, id); err != nil {
			s.respondError(c, err)
			return
		}
		respondSuccess(c, http.StatusOK, deleted)
	}
}
