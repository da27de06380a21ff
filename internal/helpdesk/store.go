package helpdesk

import (
	"context"
	"time"

	"helpdesk/internal/models"
)

// Store is the persistence contract of the helpdesk. Implementations report
// missing rows with ErrNotFound and constraint violations with ErrConflict or
// ErrInvalid. Methods documented as atomic must not be split into separate
// round-trips.
type Store interface {
	CreateUser(ctx context.Context, u NewUser) (models.User, error)
	GetUser(ctx context.Context, id string) (models.User, error)
	// GetUserByEmail returns the user together with its password hash.
	GetUserByEmail(ctx context.Context, email string) (models.User, string, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id string, changes UserChanges) (models.User, error)
	// DeleteUser is atomic: it removes the user only while no ticket,
	// comment or operation references it and reports ErrConflict otherwise.
	DeleteUser(ctx context.Context, id string) error

	ListLookups(ctx context.Context, kind models.LookupKind, name string) ([]models.Lookup, error)
	GetLookup(ctx context.Context, kind models.LookupKind, id string) (models.Lookup, error)
	CreateLookup(ctx context.Context, kind models.LookupKind, name, color string) (models.Lookup, error)
	UpdateLookup(ctx context.Context, kind models.LookupKind, id string, changes LookupChanges) (models.Lookup, error)
	// DeleteLookup is atomic: it removes the row only while no ticket
	// references it and reports ErrConflict otherwise.
	DeleteLookup(ctx context.Context, kind models.LookupKind, id string) error

	// CreateTicket resolves empty status and priority ids from the default
	// names and inserts the ticket in one transaction.
	CreateTicket(ctx context.Context, t NewTicket) (models.Ticket, error)
	GetTicket(ctx context.Context, id string) (models.Ticket, error)
	ListTickets(ctx context.Context, filter TicketFilter) ([]models.Ticket, int, error)
	UpdateTicket(ctx context.Context, id string, changes TicketChanges) (models.Ticket, error)
	// CompleteTicket looks up the status named statusName and stamps the
	// ticket in one transaction. A ticket that already carries a completion
	// time is left untouched and reported with ErrConflict.
	CompleteTicket(ctx context.Context, id, statusName string, at time.Time) (models.Ticket, error)
	TicketStats(ctx context.Context, createdBy, highPriorityName string) (models.Stats, error)

	ListComments(ctx context.Context, ticketID string) ([]models.Comment, error)
	GetComment(ctx context.Context, id string) (models.Comment, error)
	CreateComment(ctx context.Context, ticketID, userID, content string) (models.Comment, error)
	// UpdateComment and DeleteComment only touch rows owned by userID.
	UpdateComment(ctx context.Context, id, userID, content string) (models.Comment, error)
	DeleteComment(ctx context.Context, id, userID string) error

	ListOperations(ctx context.Context, ticketID string) ([]models.Operation, error)
	GetOperation(ctx context.Context, id string) (models.Operation, error)
	CreateOperation(ctx context.Context, ticketID, userID, description string) (models.Operation, error)
	DeleteOperation(ctx context.Context, id string) error
}

// NewUser is the input for CreateUser.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	IsAdmin      bool
}

// UserChanges is a partial user update; nil fields are left as they are.
type UserChanges struct {
	Name    *string
	IsAdmin *bool
}

// LookupChanges is a partial lookup update; nil fields are left as they are.
type LookupChanges struct {
	Name  *string
	Color *string
}

// NewTicket is the input for CreateTicket.
type NewTicket struct {
	Subject      string
	Description  string
	CategoryID   string
	StatusID     string
	PriorityID   string
	CreatedByID  string
	StatusName   string
	PriorityName string
}

// TicketChanges is a partial ticket update; nil fields are left as they are.
type TicketChanges struct {
	StatusID   *string
	PriorityID *string
}

// TicketFilter narrows ListTickets. Empty fields do not filter.
type TicketFilter struct {
	CreatedBy  string
	CategoryID string
	PriorityID string
	StatusID   string
	Query      string
	// Open keeps only tickets without (true) or with (false) a completion time.
	Open   *bool
	Limit  int
	Offset int
}
