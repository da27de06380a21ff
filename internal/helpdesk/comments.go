package helpdesk

import (
	"context"
	"errors"

	"helpdesk/internal/models"
)

// ListComments returns the conversation of a ticket visible to the caller.
func (s *Service) ListComments(ctx context.Context, callerID, ticketID string) ([]models.Comment, error) {
	t, err := s.GetTicket(ctx, callerID, ticketID)
	if err != nil {
		return nil, err
	}
	return s.store.ListComments(ctx, t.ID)
}

// AddComment appends a comment by the caller to a ticket they can see.
func (s *Service) AddComment(ctx context.Context, callerID, ticketID, content string) (models.Comment, error) {
	caller, err := s.Caller(ctx, callerID)
	if err != nil {
		return models.Comment{}, err
	}
	t, err := s.visibleTicket(ctx, caller, ticketID)
	if err != nil {
		return models.Comment{}, err
	}
	content = s.clean(content)
	if content == "" {
		return models.Comment{}, Invalid("content is required")
	}
	return s.store.CreateComment(ctx, t.ID, caller.ID, content)
}

// UpdateComment replaces the content of one of the caller's comments.
func (s *Service) UpdateComment(ctx context.Context, callerID, id, content string) (models.Comment, error) {
	caller, err := s.ownComment(ctx, callerID, id)
	if err != nil {
		return models.Comment{}, err
	}
	content = s.clean(content)
	if content == "" {
		return models.Comment{}, Invalid("content is required")
	}
	return s.store.UpdateComment(ctx, id, caller.ID, content)
}

// DeleteComment removes one of the caller's comments.
func (s *Service) DeleteComment(ctx context.Context, callerID, id string) error {
	caller, err := s.ownComment(ctx, callerID, id)
	if err != nil {
		return err
	}
	return s.store.DeleteComment(ctx, id, caller.ID)
}

func (s *Service) ownComment(ctx context.Context, callerID, id string) (models.User, error) {
	caller, err := s.Caller(ctx, callerID)
	if err != nil {
		return models.User{}, err
	}
	c, err := s.store.GetComment(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return models.User{}, NotFound("comment not found")
	}
	if err != nil {
		return models.User{}, err
	}
	if c.UserID != caller.ID {
		return models.User{}, Forbidden("only the author can change a comment")
	}
	return caller, nil
}
