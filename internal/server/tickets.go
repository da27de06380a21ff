package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"helpdesk/internal/helpdesk"
)

type ticketRequest struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
	CategoryID  string `json:"categoryId"`
	StatusID    string `json:"statusId"`
	PriorityID  string `json:"priorityId"`
}

type ticketPatch struct {
	StatusID   *string `json:"statusId"`
	PriorityID *string `json:"priorityId"`
}

type ticketQuery struct {
	CategoryID string `form:"categoryId"`
	PriorityID string `form:"priorityId"`
	StatusID   string `form:"statusId"`
	Query      string `form:"q"`
	Open       *bool  `form:"open"`
	Limit      int    `form:"limit"`
	Offset     int    `form:"offset"`
}

func (q ticketQuery) filter() helpdesk.TicketFilter {
	return helpdesk.TicketFilter{
		CategoryID: q.CategoryID,
		PriorityID: q.PriorityID,
		StatusID:   q.StatusID,
		Query:      q.Query,
		Open:       q.Open,
		Limit:      q.Limit,
		Offset:     q.Offset,
	}
}

func bindTicketQuery(c *gin.Context) (ticketQuery, bool) {
	var q ticketQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return q, false
	}
	return q, true
}

// handleListTickets returns one page of the tickets visible to the caller.
func (s *Server) handleListTickets(c *gin.Context) {
	q, ok := bindTicketQuery(c)
	if !ok {
		return
	}
	tickets, total, err := s.svc.ListTickets(c.Request.Context(), callerID(c), q.filter())
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"tickets": tickets, "total": total})
}

// handleCreateTicket files a ticket for the caller.
func (s *Server) handleCreateTicket(c *gin.Context) {
	var req ticketRequest
	if !bindJSON(c, &req) {
		return
	}
	ticket, err := s.svc.CreateTicket(c.Request.Context(), callerID(c), helpdesk.TicketInput{
		Subject:     req.Subject,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		StatusID:    req.StatusID,
		PriorityID:  req.PriorityID,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, ticket)
}

// handleGetTicket returns a ticket with its comments and operations.
func (s *Server) handleGetTicket(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	detail, err := s.svc.TicketDetail(c.Request.Context(), callerID(c), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, detail)
}

// handleUpdateTicket reassigns status and/or priority.
func (s *Server) handleUpdateTicket(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req ticketPatch
	if !bindJSON(c, &req) {
		return
	}
	ticket, err := s.svc.ReassignTicket(c.Request.Context(), callerID(c), id, helpdesk.TicketChanges{
		StatusID:   req.StatusID,
		PriorityID: req.PriorityID,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, ticket)
}

func (s *Server) handleCompleteTicket(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ticket, err := s.svc.CompleteTicket(c.Request.Context(), callerID(c), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, ticket)
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.svc.Stats(c.Request.Context(), callerID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, stats)
}
