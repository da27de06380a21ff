package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"helpdesk/internal/helpdesk"
	"helpdesk/internal/models"
)

const operationSelect = `SELECT e.id, e.description AS body, e.ticket_id, e.user_id, e.created_at, e.updated_at,
        u.name AS author_name, u.email AS author_email
    FROM operations e
    JOIN users u ON u.id = e.user_id`

func (r entryRow) operation() models.Operation {
	return models.Operation{
		ID:          r.ID,
		Description: r.Body,
		TicketID:    r.TicketID,
		UserID:      r.UserID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		User:        r.author(),
	}
}

// ListOperations retrieves the audit trail of a ticket, oldest first.
func (s *Store) ListOperations(ctx context.Context, ticketID string) ([]models.Operation, error) {
	var rows []entryRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(operationSelect+` WHERE e.ticket_id = ? ORDER BY e.created_at ASC, e.id ASC`), ticketID); err != nil {
		return nil, fmt.Errorf("list operations: %w", err)
	}
	ops := make([]models.Operation, 0, len(rows))
	for _, r := range rows {
		ops = append(ops, r.operation())
	}
	return ops, nil
}

func (s *Store) GetOperation(ctx context.Context, id string) (models.Operation, error) {
	var row entryRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(operationSelect+` WHERE e.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Operation{}, helpdesk.NotFound("operation not found")
	}
	if err != nil {
		return models.Operation{}, fmt.Errorf("get operation: %w", err)
	}
	return row.operation(), nil
}

func (s *Store) CreateOperation(ctx context.Context, ticketID, userID, description string) (models.Operation, error) {
	id := s.newID()
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO operations(id, description, ticket_id, user_id, created_at) VALUES(?, ?, ?, ?, ?)`),
		id, description, ticketID, userID, s.now())
	if err != nil {
		return models.Operation{}, writeError("insert operation", err, "operation already exists", "unknown ticket or user")
	}
	return s.GetOperation(ctx, id)
}

func (s *Store) DeleteOperation(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM operations WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete operation: %w", err)
	}
	ok, err := affectedOne(res)
	if err != nil {
		return err
	}
	if !ok {
		return helpdesk.NotFound("operation not found")
	}
	return nil
}
