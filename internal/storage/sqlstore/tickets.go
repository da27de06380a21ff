package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"helpdesk/internal/helpdesk"
	"helpdesk/internal/models"
)

const ticketSelect = `SELECT t.id, t.subject, t.description, t.category_id, t.priority_id, t.status_id,
        t.created_by_id, t.created_at, t.updated_at, t.completed_at,
        c.name AS category_name, c.color AS category_color,
        p.name AS priority_name, p.color AS priority_color,
        s.name AS status_name, s.color AS status_color,
        u.name AS creator_name, u.email AS creator_email
    FROM tickets t
    JOIN categories c ON c.id = t.category_id
    JOIN priorities p ON p.id = t.priority_id
    JOIN statuses s ON s.id = t.status_id
    JOIN users u ON u.id = t.created_by_id`

type ticketRow struct {
	ID            string     `db:"id"`
	Subject       string     `db:"subject"`
	Description   string     `db:"description"`
	CategoryID    string     `db:"category_id"`
	PriorityID    string     `db:"priority_id"`
	StatusID      string     `db:"status_id"`
	CreatedByID   string     `db:"created_by_id"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     *time.Time `db:"updated_at"`
	CompletedAt   *time.Time `db:"completed_at"`
	CategoryName  string     `db:"category_name"`
	CategoryColor string     `db:"category_color"`
	PriorityName  string     `db:"priority_name"`
	PriorityColor string     `db:"priority_color"`
	StatusName    string     `db:"status_name"`
	StatusColor   string     `db:"status_color"`
	CreatorName   string     `db:"creator_name"`
	CreatorEmail  string     `db:"creator_email"`
}

func (r ticketRow) ticket() models.Ticket {
	return models.Ticket{
		ID:          r.ID,
		Subject:     r.Subject,
		Description: r.Description,
		CategoryID:  r.CategoryID,
		PriorityID:  r.PriorityID,
		StatusID:    r.StatusID,
		CreatedByID: r.CreatedByID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		CompletedAt: r.CompletedAt,
		Category:    &models.LookupRef{ID: r.CategoryID, Name: r.CategoryName, Color: r.CategoryColor},
		Priority:    &models.LookupRef{ID: r.PriorityID, Name: r.PriorityName, Color: r.PriorityColor},
		Status:      &models.LookupRef{ID: r.StatusID, Name: r.StatusName, Color: r.StatusColor},
		CreatedBy:   &models.UserRef{ID: r.CreatedByID, Name: r.CreatorName, Email: r.CreatorEmail},
	}
}

// CreateTicket inserts a ticket, resolving missing status and priority ids
// from their default names within the same transaction.
func (s *Store) CreateTicket(ctx context.Context, nt helpdesk.NewTicket) (models.Ticket, error) {
	id := s.newID()
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		if nt.StatusID == "" {
			if nt.StatusID, err = lookupIDByName(ctx, tx, models.KindStatus, nt.StatusName); err != nil {
				return err
			}
		}
		if nt.PriorityID == "" {
			if nt.PriorityID, err = lookupIDByName(ctx, tx, models.KindPriority, nt.PriorityName); err != nil {
				return err
			}
		}
		_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO tickets(id, subject, description, category_id, priority_id, status_id, created_by_id, created_at)
            VALUES(?, ?, ?, ?, ?, ?, ?, ?)`),
			id, nt.Subject, nt.Description, nt.CategoryID, nt.PriorityID, nt.StatusID, nt.CreatedByID, s.now())
		if err != nil {
			return writeError("insert ticket", err, "ticket already exists", "unknown category, priority or status")
		}
		return nil
	})
	if err != nil {
		return models.Ticket{}, err
	}
	return s.GetTicket(ctx, id)
}

// GetTicket fetches a ticket with its category, priority, status and author.
func (s *Store) GetTicket(ctx context.Context, id string) (models.Ticket, error) {
	var row ticketRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(ticketSelect+` WHERE t.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Ticket{}, helpdesk.NotFound("ticket not found")
	}
	if err != nil {
		return models.Ticket{}, fmt.Errorf("get ticket: %w", err)
	}
	return row.ticket(), nil
}

// ListTickets returns one page of tickets, newest first, and the number of
// tickets matching the filter.
func (s *Store) ListTickets(ctx context.Context, f helpdesk.TicketFilter) ([]models.Ticket, int, error) {
	where, args := ticketWhere(f)

	var total int
	if err := s.db.GetContext(ctx, &total, s.db.Rebind(`SELECT COUNT(*) FROM tickets t`+where), args...); err != nil {
		return nil, 0, fmt.Errorf("count tickets: %w", err)
	}

	query := ticketSelect + where + ` ORDER BY t.created_at DESC, t.id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}
	var rows []ticketRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("list tickets: %w", err)
	}

	tickets := make([]models.Ticket, 0, len(rows))
	for _, r := range rows {
		tickets = append(tickets, r.ticket())
	}
	return tickets, total, nil
}

func ticketWhere(f helpdesk.TicketFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if f.CreatedBy != "" {
		clauses = append(clauses, "t.created_by_id = ?")
		args = append(args, f.CreatedBy)
	}
	if f.CategoryID != "" {
		clauses = append(clauses, "t.category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.PriorityID != "" {
		clauses = append(clauses, "t.priority_id = ?")
		args = append(args, f.PriorityID)
	}
	if f.StatusID != "" {
		clauses = append(clauses, "t.status_id = ?")
		args = append(args, f.StatusID)
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		p := "%" + q + "%"
		clauses = append(clauses, "(LOWER(t.subject) LIKE ? OR LOWER(t.description) LIKE ?)")
		args = append(args, p, p)
	}
	if f.Open != nil {
		if *f.Open {
			clauses = append(clauses, "t.completed_at IS NULL")
		} else {
			clauses = append(clauses, "t.completed_at IS NOT NULL")
		}
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// UpdateTicket reassigns status and/or priority and refreshes updated_at.
func (s *Store) UpdateTicket(ctx context.Context, id string, changes helpdesk.TicketChanges) (models.Ticket, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE tickets SET status_id = COALESCE(?, status_id), priority_id = COALESCE(?, priority_id), updated_at = ? WHERE id = ?`),
		changes.StatusID, changes.PriorityID, s.now(), id)
	if err != nil {
		return models.Ticket{}, writeError("update ticket", err, "ticket already exists", "unknown status or priority")
	}
	ok, err := affectedOne(res)
	if err != nil {
		return models.Ticket{}, err
	}
	if !ok {
		return models.Ticket{}, helpdesk.NotFound("ticket not found")
	}
	return s.GetTicket(ctx, id)
}

// CompleteTicket resolves the completed status by name and stamps the
// ticket, both inside one transaction. Only tickets without a completion
// time are touched.
func (s *Store) CompleteTicket(ctx context.Context, id, statusName string, at time.Time) (models.Ticket, error) {
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		statusID, err := lookupIDByName(ctx, tx, models.KindStatus, statusName)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE tickets SET status_id = ?, completed_at = ?, updated_at = ? WHERE id = ? AND completed_at IS NULL`),
			statusID, at, at, id)
		if err != nil {
			return fmt.Errorf("complete ticket: %w", err)
		}
		ok, err := affectedOne(res)
		if err != nil || ok {
			return err
		}

		var exists int
		if err := tx.GetContext(ctx, &exists, tx.Rebind(`SELECT COUNT(*) FROM tickets WHERE id = ?`), id); err != nil {
			return fmt.Errorf("check ticket: %w", err)
		}
		if exists == 0 {
			return helpdesk.NotFound("ticket not found")
		}
		return helpdesk.Conflict("ticket already completed")
	})
	if err != nil {
		return models.Ticket{}, err
	}
	return s.GetTicket(ctx, id)
}

// TicketStats counts tickets, optionally only those created by one user.
func (s *Store) TicketStats(ctx context.Context, createdBy, highPriorityName string) (models.Stats, error) {
	query := `SELECT COUNT(*),
            COALESCE(SUM(CASE WHEN t.completed_at IS NULL THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN t.completed_at IS NOT NULL THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN t.completed_at IS NULL AND LOWER(p.name) = LOWER(?) THEN 1 ELSE 0 END), 0)
        FROM tickets t
        JOIN priorities p ON p.id = t.priority_id`
	args := []any{highPriorityName}
	if createdBy != "" {
		query += ` WHERE t.created_by_id = ?`
		args = append(args, createdBy)
	}

	var st models.Stats
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(query), args...).Scan(&st.Total, &st.Open, &st.Completed, &st.HighPriorityOpen)
	if err != nil {
		return models.Stats{}, fmt.Errorf("ticket stats: %w", err)
	}
	return st, nil
}

func lookupIDByName(ctx context.Context, tx *sqlx.Tx, kind models.LookupKind, name string) (string, error) {
	lt, err := tableFor(kind)
	if err != nil {
		return "", err
	}
	var id string
	err = tx.GetContext(ctx, &id, tx.Rebind(`SELECT id FROM `+lt.table+` WHERE LOWER(name) = LOWER(?) LIMIT 1`), name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", helpdesk.NotFound(fmt.Sprintf("%s %q not found", kind, name))
	}
	if err != nil {
		return "", fmt.Errorf("find %s by name: %w", kind, err)
	}
	return id, nil
}
