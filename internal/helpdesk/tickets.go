package helpdesk

import (
	"context"
	"errors"

	"helpdesk/internal/models"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// TicketInput is what a caller submits when filing a ticket.
type TicketInput struct {
	Subject     string
	Description string
	CategoryID  string
	StatusID    string
	PriorityID  string
}

// CreateTicket files a ticket on behalf of the caller. Status and priority
// start at the configured defaults; only admins may choose them explicitly.
func (s *Service) CreateTicket(ctx context.Context, callerID string, in TicketInput) (models.Ticket, error) {
	caller, err := s.Caller(ctx, callerID)
	if err != nil {
		return models.Ticket{}, err
	}

	nt := NewTicket{
		Subject:      s.clean(in.Subject),
		Description:  s.clean(in.Description),
		CategoryID:   in.CategoryID,
		CreatedByID:  caller.ID,
		StatusName:   s.opts.DefaultStatus,
		PriorityName: s.opts.DefaultPriority,
	}
	if nt.Subject == "" {
		return models.Ticket{}, Invalid("subject is required")
	}
	if nt.CategoryID == "" {
		return models.Ticket{}, Invalid("categoryId is required")
	}
	if caller.IsAdmin {
		nt.StatusID = in.StatusID
		nt.PriorityID = in.PriorityID
	}

	t, err := s.store.CreateTicket(ctx, nt)
	if err != nil {
		return models.Ticket{}, err
	}
	s.logger.Info("ticket created", "ticket_id", t.ID, "user_id", caller.ID)
	return t, nil
}

// ListTickets returns the tickets the caller may see: all of them for admins,
// their own for everyone else.
func (s *Service) ListTickets(ctx context.Context, callerID string, filter TicketFilter) ([]models.Ticket, int, error) {
	caller, err := s.Caller(ctx, callerID)
	if err != nil {
		return nil, 0, err
	}
	filter.CreatedBy = ""
	if !caller.IsAdmin {
		filter.CreatedBy = caller.ID
	}
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultPageSize
	case filter.Limit > maxPageSize:
		filter.Limit = maxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.store.ListTickets(ctx, filter)
}

// GetTicket returns a ticket the caller may see. A ticket owned by someone
// else is reported exactly like a missing one.
func (s *Service) GetTicket(ctx context.Context, callerID, id string) (models.Ticket, error) {
	caller, err := s.Caller(ctx, callerID)
	if err != nil {
		return models.Ticket{}, err
	}
	return s.visibleTicket(ctx, caller, id)
}

// TicketDetail returns a visible ticket with its comments and operations.
func (s *Service) TicketDetail(ctx context.Context, callerID, id string) (models.TicketDetail, error) {
	caller, err := s.Caller(ctx, callerID)
	if err != nil {
		return models.TicketDetail{}, err
	}
	t, err := s.visibleTicket(ctx, caller, id)
	if err != nil {
		return models.TicketDetail{}, err
	}
	comments, err := s.store.ListComments(ctx, t.ID)
	if err != nil {
		return models.TicketDetail{}, err
	}
	operations, err := s.store.ListOperations(ctx, t.ID)
	if err != nil {
		return models.TicketDetail{}, err
	}
	return models.TicketDetail{Ticket: t, Comments: comments, Operations: operations}, nil
}

// ReassignTicket moves a ticket to another status or priority. Admin only.
func (s *Service) ReassignTicket(ctx context.Context, callerID, id string, changes TicketChanges) (models.Ticket, error) {
	caller, err := s.RequireAdmin(ctx, callerID)
	if err != nil {
		return models.Ticket{}, err
	}
	if (changes.StatusID != nil && *changes.StatusID == "") || (changes.PriorityID != nil && *changes.PriorityID == "") {
		return models.Ticket{}, Invalid("statusId and priorityId must not be empty")
	}
	t, err := s.store.UpdateTicket(ctx, id, changes)
	if err != nil {
		return models.Ticket{}, err
	}
	s.logger.Info("ticket reassigned", "ticket_id", t.ID, "user_id", caller.ID, "status_id", t.StatusID, "priority_id", t.PriorityID)
	return t, nil
}

// CompleteTicket moves a ticket to the completed status and stamps its
// completion time. A ticket is completed at most once.
func (s *Service) CompleteTicket(ctx context.Context, callerID, id string) (models.Ticket, error) {
	caller, err := s.RequireAdmin(ctx, callerID)
	if err != nil {
		return models.Ticket{}, err
	}
	t, err := s.store.CompleteTicket(ctx, id, s.opts.CompletedStatus, s.now())
	if err != nil {
		return models.Ticket{}, err
	}
	s.logger.Info("ticket completed", "ticket_id", t.ID, "user_id", caller.ID)
	return t, nil
}

// Stats summarises the tickets visible to the caller.
func (s *Service) Stats(ctx context.Context, callerID string) (models.Stats, error) {
	caller, err := s.Caller(ctx, callerID)
	if err != nil {
		return models.Stats{}, err
	}
	createdBy := ""
	if !caller.IsAdmin {
		createdBy = caller.ID
	}
	return s.store.TicketStats(ctx, createdBy, s.opts.HighPriority)
}

func (s *Service) visibleTicket(ctx context.Context, caller models.User, id string) (models.Ticket, error) {
	t, err := s.store.GetTicket(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return models.Ticket{}, NotFound("ticket not found")
	}
	if err != nil {
		return models.Ticket{}, err
	}
	if !caller.IsAdmin && t.CreatedByID != caller.ID {
		return models.Ticket{}, NotFound("ticket not found")
	}
	return t, nil
}

// ExportTickets returns every ticket matching filter for reporting. Admin only.
func (s *Service) ExportTickets(ctx context.Context, callerID string, filter TicketFilter) ([]models.Ticket, error) {
	if _, err := s.RequireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	filter.CreatedBy = ""
	filter.Limit = maxPageSize
	filter.Offset = 0

	var all []models.Ticket
	for {
		page, total, err := s.store.ListTickets(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		filter.Offset += len(page)
		if len(page) == 0 || filter.Offset >= total {
			return all, nil
		}
	}
}
