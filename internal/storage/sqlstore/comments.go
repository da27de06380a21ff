package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"helpdesk/internal/helpdesk"
	"helpdesk/internal/models"
)

// entryRow is the shape shared by comments and operations: a text body on a
// ticket plus the author's short form.
type entryRow struct {
	ID          string     `db:"id"`
	Body        string     `db:"body"`
	TicketID    string     `db:"ticket_id"`
	UserID      string     `db:"user_id"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at"`
	AuthorName  string     `db:"author_name"`
	AuthorEmail string     `db:"author_email"`
}

func (r entryRow) author() *models.UserRef {
	return &models.UserRef{ID: r.UserID, Name: r.AuthorName, Email: r.AuthorEmail}
}

func (r entryRow) comment() models.Comment {
	return models.Comment{
		ID:        r.ID,
		Content:   r.Body,
		TicketID:  r.TicketID,
		UserID:    r.UserID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		User:      r.author(),
	}
}

const commentSelect = `SELECT e.id, e.content AS body, e.ticket_id, e.user_id, e.created_at, e.updated_at,
        u.name AS author_name, u.email AS author_email
    FROM comments e
    JOIN users u ON u.id = e.user_id`

// ListComments retrieves the comments of a ticket, oldest first.
func (s *Store) ListComments(ctx context.Context, ticketID string) ([]models.Comment, error) {
	var rows []entryRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(commentSelect+` WHERE e.ticket_id = ? ORDER BY e.created_at ASC, e.id ASC`), ticketID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	comments := make([]models.Comment, 0, len(rows))
	for _, r := range rows {
		comments = append(comments, r.comment())
	}
	return comments, nil
}

// GetComment fetches a single comment.
func (s *Store) GetComment(ctx context.Context, id string) (models.Comment, error) {
	var row entryRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(commentSelect+` WHERE e.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Comment{}, helpdesk.NotFound("comment not found")
	}
	if err != nil {
		return models.Comment{}, fmt.Errorf("get comment: %w", err)
	}
	return row.comment(), nil
}

// CreateComment inserts a comment authored by userID.
func (s *Store) CreateComment(ctx context.Context, ticketID, userID, content string) (models.Comment, error) {
	id := s.newID()
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO comments(id, content, ticket_id, user_id, created_at) VALUES(?, ?, ?, ?, ?)`),
		id, content, ticketID, userID, s.now())
	if err != nil {
		return models.Comment{}, writeError("insert comment", err, "comment already exists", "unknown ticket or user")
	}
	return s.GetComment(ctx, id)
}

// UpdateComment replaces the content of a comment owned by userID.
func (s *Store) UpdateComment(ctx context.Context, id, userID, content string) (models.Comment, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE comments SET content = ?, updated_at = ? WHERE id = ? AND user_id = ?`),
		content, s.now(), id, userID)
	if err != nil {
		return models.Comment{}, fmt.Errorf("update comment: %w", err)
	}
	ok, err := affectedOne(res)
	if err != nil {
		return models.Comment{}, err
	}
	if !ok {
		return models.Comment{}, helpdesk.NotFound("comment not found")
	}
	return s.GetComment(ctx, id)
}

// DeleteComment removes a comment owned by userID.
func (s *Store) DeleteComment(ctx context.Context, id, userID string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM comments WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	ok, err := affectedOne(res)
	if err != nil {
		return err
	}
	if !ok {
		return helpdesk.NotFound("comment not found")
	}
	return nil
}
