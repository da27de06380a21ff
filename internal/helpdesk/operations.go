package helpdesk

import (
	"context"
	"errors"

	"helpdesk/internal/models"
)

// ListOperations returns the audit trail of a ticket visible to the caller.
func (s *Service) ListOperations(ctx context.Context, callerID, ticketID string) ([]models.Operation, error) {
	t, err := s.GetTicket(ctx, callerID, ticketID)
	if err != nil {
		return nil, err
	}
	return s.store.ListOperations(ctx, t.ID)
}

// AddOperation records an admin action on a ticket. Admin only.
func (s *Service) AddOperation(ctx context.Context, callerID, ticketID, description string) (models.Operation, error) {
	caller, err := s.RequireAdmin(ctx, callerID)
	if err != nil {
		return models.Operation{}, err
	}
	t, err := s.visibleTicket(ctx, caller, ticketID)
	if err != nil {
		return models.Operation{}, err
	}
	description = s.clean(description)
	if description == "" {
		return models.Operation{}, Invalid("description is required")
	}
	return s.store.CreateOperation(ctx, t.ID, caller.ID, description)
}

// DeleteOperation removes an audit entry. Admin only; entries are never edited.
func (s *Service) DeleteOperation(ctx context.Context, callerID, id string) error {
	if _, err := s.RequireAdmin(ctx, callerID); err != nil {
		return err
	}
	err := s.store.DeleteOperation(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return NotFound("operation not found")
	}
	return err
}
