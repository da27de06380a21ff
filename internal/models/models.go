package models

import "time"

// User is an account that can file tickets. Admins triage every ticket and
// maintain the reference data.
type User struct {
	ID        string     `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Email     string     `json:"email" db:"email"`
	IsAdmin   bool       `json:"isAdmin" db:"is_admin"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt *time.Time `json:"updatedAt" db:"updated_at"`
}

// UserRef is the short form of a user embedded in other payloads.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LookupKind names one of the reference tables a ticket points at.
type LookupKind string

const (
	KindCategory LookupKind = "category"
	KindPriority LookupKind = "priority"
	KindStatus   LookupKind = "status"
)

// LookupKinds lists every reference table in a stable order.
var LookupKinds = []LookupKind{KindCategory, KindPriority, KindStatus}

// Lookup is a category, priority or status row.
type Lookup struct {
	ID        string     `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Color     string     `json:"color" db:"color"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt *time.Time `json:"updatedAt" db:"updated_at"`
}

// LookupRef is the short form of a lookup embedded in ticket payloads.
type LookupRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Ticket is a support request moving from its initial status to completion.
type Ticket struct {
	ID          string     `json:"id"`
	Subject     string     `json:"subject"`
	Description string     `json:"description"`
	CategoryID  string     `json:"categoryId"`
	PriorityID  string     `json:"priorityId"`
	StatusID    string     `json:"statusId"`
	CreatedByID string     `json:"createdById"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt"`

	Category  *LookupRef `json:"category,omitempty"`
	Priority  *LookupRef `json:"priority,omitempty"`
	Status    *LookupRef `json:"status,omitempty"`
	CreatedBy *UserRef   `json:"createdBy,omitempty"`
}

// Completed reports whether the ticket went through completion.
func (t Ticket) Completed() bool {
	return t.CompletedAt != nil
}

// Comment is a message on a ticket, editable only by its author.
type Comment struct {
	ID        string     `json:"id"`
	Content   string     `json:"content"`
	TicketID  string     `json:"ticketId"`
	UserID    string     `json:"userId"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt"`
	User      *UserRef   `json:"user,omitempty"`
}

// Operation is an admin-authored audit entry attached to a ticket.
type Operation struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	TicketID    string     `json:"ticketId"`
	UserID      string     `json:"userId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
	User        *UserRef   `json:"user,omitempty"`
}

// TicketDetail bundles a ticket with its conversation and audit trail.
type TicketDetail struct {
	Ticket     Ticket      `json:"ticket"`
	Comments   []Comment   `json:"comments"`
	Operations []Operation `json:"operations"`
}

// Stats summarises the tickets visible to a caller.
type Stats struct {
	Total            int `json:"total"`
	Open             int `json:"open"`
	Completed        int `json:"completed"`
	HighPriorityOpen int `json:"highPriorityOpen"`
}
