package helpdesk_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helpdesk/internal/auth"
	"helpdesk/internal/helpdesk"
	"helpdesk/internal/models"
	"helpdesk/internal/seed"
	"helpdesk/internal/storage/sqlstore"
)

type env struct {
	ctx   context.Context
	svc   *helpdesk.Service
	store *sqlstore.Store
	admin models.User
	user  models.User
	other models.User
}

func setup(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	store, err := sqlstore.Open(sqlstore.DriverSQLite, filepath.Join(t.TempDir(), "helpdesk.db"), nil, sqlstore.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	hasher := auth.NewPasswordHasher(4)
	doc, err := seed.Default()
	require.NoError(t, err)
	_, err = seed.Run(ctx, store, hasher, doc, &seed.Admin{Name: "Admin", Email: "admin@example.com", Password: "adminpass"}, nil)
	require.NoError(t, err)

	svc := helpdesk.New(store, hasher, helpdesk.Options{}, nil)
	e := &env{ctx: ctx, svc: svc, store: store}

	e.admin, err = svc.Authenticate(ctx, "admin@example.com", "adminpass")
	require.NoError(t, err)
	e.user, err = svc.Register(ctx, "Test User", "test@example.com", "password123")
	require.NoError(t, err)
	e.other, err = svc.Register(ctx, "Other User", "other@example.com", "password123")
	require.NoError(t, err)
	return e
}

func (e *env) lookup(t *testing.T, kind models.LookupKind, name string) models.Lookup {
	t.Helper()
	rows, err := e.svc.ListLookups(e.ctx, kind, name)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	return rows[0]
}

func (e *env) ticket(t *testing.T, owner models.User, subject string) models.Ticket {
	t.Helper()
	category := e.lookup(t, models.KindCategory, "Question")
	tk, err := e.svc.CreateTicket(e.ctx, owner.ID, helpdesk.TicketInput{Subject: subject, Description: "details", CategoryID: category.ID})
	require.NoError(t, err)
	return tk
}

func TestRegister(t *testing.T) {
	e := setup(t)

	assert.False(t, e.user.IsAdmin)
	assert.Equal(t, "test@example.com", e.user.Email)

	_, hash, err := e.store.GetUserByEmail(e.ctx, "test@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	_, err = e.svc.Register(e.ctx, "Dup", "TEST@example.com", "password123")
	assert.ErrorIs(t, err, helpdesk.ErrConflict)
	assert.EqualError(t, err, "email already in use")

	tests := []struct {
		name, userName, email, password string
	}{
		{"missing name", "", "a@example.com", "password123"},
		{"bad email", "A", "not-an-email", "password123"},
		{"display name email", "A", "A <a@example.com>", "password123"},
		{"short password", "A", "a@example.com", "123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.svc.Register(e.ctx, tt.userName, tt.email, tt.password)
			assert.ErrorIs(t, err, helpdesk.ErrInvalid)
		})
	}

	users, err := e.svc.ListUsers(e.ctx, e.admin.ID)
	require.NoError(t, err)
	assert.Len(t, users, 3)
}

func TestAuthenticate(t *testing.T) {
	e := setup(t)

	u, err := e.svc.Authenticate(e.ctx, " Test@Example.com ", "password123")
	require.NoError(t, err)
	assert.Equal(t, e.user.ID, u.ID)

	_, err = e.svc.Authenticate(e.ctx, "test@example.com", "wrong")
	assert.ErrorIs(t, err, helpdesk.ErrUnauthorized)
	_, err = e.svc.Authenticate(e.ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, helpdesk.ErrUnauthorized)
}

func TestCaller(t *testing.T) {
	e := setup(t)

	_, err := e.svc.Caller(e.ctx, "")
	assert.ErrorIs(t, err, helpdesk.ErrUnauthorized)

	_, err = e.svc.Caller(e.ctx, "6a4e2f4e-3a38-4ab2-9fd1-1f0f0e4b8c11")
	assert.ErrorIs(t, err, helpdesk.ErrNotFound)

	_, err = e.svc.RequireAdmin(e.ctx, e.user.ID)
	assert.ErrorIs(t, err, helpdesk.ErrForbidden)
	_, err = e.svc.RequireAdmin(e.ctx, e.admin.ID)
	assert.NoError(t, err)
}

func TestLookupAdministration(t *testing.T) {
	e := setup(t)

	_, err := e.svc.CreateLookup(e.ctx, e.user.ID, models.KindCategory, "Billing", "#123456")
	assert.ErrorIs(t, err, helpdesk.ErrForbidden)
	_, err = e.svc.CreateLookup(e.ctx, "", models.KindCategory, "Billing", "#123456")
	assert.ErrorIs(t, err, helpdesk.ErrUnauthorized)

	billing, err := e.svc.CreateLookup(e.ctx, e.admin.ID, models.KindCategory, "<b>Billing</b>", "")
	require.NoError(t, err)
	assert.Equal(t, "Billing", billing.Name)
	assert.Regexp(t, `^#[0-9a-f]{6}$`, billing.Color)

	_, err = e.svc.CreateLookup(e.ctx, e.admin.ID, models.KindCategory, "billing", "#000")
	assert.ErrorIs(t, err, helpdesk.ErrConflict)
	_, err = e.svc.CreateLookup(e.ctx, e.admin.ID, models.KindCategory, "Refunds", "red")
	assert.ErrorIs(t, err, helpdesk.ErrInvalid)

	before, err := e.svc.ListLookups(e.ctx, models.KindCategory, "")
	require.NoError(t, err)

	color := "#fff"
	updated, err := e.svc.UpdateLookup(e.ctx, e.admin.ID, models.KindCategory, billing.ID, helpdesk.LookupChanges{Color: &color})
	require.NoError(t, err)
	assert.Equal(t, "#fff", updated.Color)
	assert.Equal(t, "Billing", updated.Name)

	require.NoError(t, e.svc.DeleteLookup(e.ctx, e.admin.ID, models.KindCategory, billing.ID))
	after, err := e.svc.ListLookups(e.ctx, models.KindCategory, "")
	require.NoError(t, err)
	assert.Len(t, after, len(before)-1)
}

func TestDeleteLookupInUse(t *testing.T) {
	e := setup(t)
	tk := e.ticket(t, e.user, "Broken keyboard")

	err := e.svc.DeleteLookup(e.ctx, e.admin.ID, models.KindCategory, tk.CategoryID)
	assert.ErrorIs(t, err, helpdesk.ErrConflict)
	err = e.svc.DeleteLookup(e.ctx, e.admin.ID, models.KindStatus, tk.StatusID)
	assert.ErrorIs(t, err, helpdesk.ErrConflict)

	_, err = e.store.GetLookup(e.ctx, models.KindCategory, tk.CategoryID)
	assert.NoError(t, err)
}

func TestCreateTicketDefaults(t *testing.T) {
	e := setup(t)
	high := e.lookup(t, models.KindPriority, "High")
	waiting := e.lookup(t, models.KindStatus, "Waiting")
	category := e.lookup(t, models.KindCategory, "Request")

	tk, err := e.svc.CreateTicket(e.ctx, e.user.ID, helpdesk.TicketInput{
		Subject:    "  <script>alert(1)</script>Need a monitor ",
		CategoryID: category.ID,
		StatusID:   waiting.ID,
		PriorityID: high.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Need a monitor", tk.Subject)
	assert.Equal(t, "Open", tk.Status.Name, "regular users cannot choose the status")
	assert.Equal(t, "Medium", tk.Priority.Name)
	assert.Equal(t, e.user.ID, tk.CreatedByID)

	tk, err = e.svc.CreateTicket(e.ctx, e.admin.ID, helpdesk.TicketInput{
		Subject:    "Escalated",
		CategoryID: category.ID,
		StatusID:   waiting.ID,
		PriorityID: high.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, waiting.ID, tk.StatusID)
	assert.Equal(t, high.ID, tk.PriorityID)

	_, err = e.svc.CreateTicket(e.ctx, e.user.ID, helpdesk.TicketInput{CategoryID: category.ID})
	assert.ErrorIs(t, err, helpdesk.ErrInvalid)
	_, err = e.svc.CreateTicket(e.ctx, e.user.ID, helpdesk.TicketInput{Subject: "No category"})
	assert.ErrorIs(t, err, helpdesk.ErrInvalid)
	_, err = e.svc.CreateTicket(e.ctx, "", helpdesk.TicketInput{Subject: "Anon", CategoryID: category.ID})
	assert.ErrorIs(t, err, helpdesk.ErrUnauthorized)
}

func TestEncodedMarkupIsStripped(t *testing.T) {
	e := setup(t)
	tk := e.ticket(t, e.user, "Printer")
	category := e.lookup(t, models.KindCategory, "Question")

	tests := []struct {
		name, in, want string
	}{
		{"encoded image", "&lt;img src=x onerror=alert(1)&gt;Printer jam", "Printer jam"},
		{"encoded script", "&lt;script&gt;alert(1)&lt;/script&gt;Hello", "Hello"},
		{"double encoded", "&amp;lt;b&amp;gt;Bold&amp;lt;/b&amp;gt;", "Bold"},
		{"plain entities", "Tom &amp; Jerry", "Tom & Jerry"},
		{"comparison", "a < b", "a < b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created, err := e.svc.CreateTicket(e.ctx, e.user.ID, helpdesk.TicketInput{Subject: tt.in, CategoryID: category.ID})
			require.NoError(t, err)
			assert.Equal(t, tt.want, created.Subject)

			c, err := e.svc.AddComment(e.ctx, e.user.ID, tk.ID, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Content)
		})
	}

	_, err := e.svc.AddComment(e.ctx, e.user.ID, tk.ID, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.ErrorIs(t, err, helpdesk.ErrInvalid)
}

func TestListTicketsLimit(t *testing.T) {
	e := setup(t)
	for i := range 60 {
		e.ticket(t, e.user, fmt.Sprintf("Ticket %d", i))
	}

	page, total, err := e.svc.ListTickets(e.ctx, e.user.ID, helpdesk.TicketFilter{})
	require.NoError(t, err)
	assert.Equal(t, 60, total)
	assert.Len(t, page, 50)

	page, _, err = e.svc.ListTickets(e.ctx, e.user.ID, helpdesk.TicketFilter{Limit: 500})
	require.NoError(t, err)
	assert.Len(t, page, 60)

	page, _, err = e.svc.ListTickets(e.ctx, e.user.ID, helpdesk.TicketFilter{Limit: 10, Offset: -5})
	require.NoError(t, err)
	assert.Len(t, page, 10)
}

func TestCreateTicketWithoutSentinelStatus(t *testing.T) {
	e := setup(t)
	svc := helpdesk.New(e.store, auth.NewPasswordHasher(4), helpdesk.Options{DefaultStatus: "Triage"}, nil)
	category := e.lookup(t, models.KindCategory, "Request")

	_, err := svc.CreateTicket(e.ctx, e.user.ID, helpdesk.TicketInput{Subject: "x", CategoryID: category.ID})
	assert.ErrorIs(t, err, helpdesk.ErrNotFound)

	_, total, err := e.store.ListTickets(e.ctx, helpdesk.TicketFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestTicketVisibility(t *testing.T) {
	e := setup(t)
	tk := e.ticket(t, e.user, "Private matter")

	_, err := e.svc.GetTicket(e.ctx, e.other.ID, tk.ID)
	require.ErrorIs(t, err, helpdesk.ErrNotFound)
	_, missingErr := e.svc.GetTicket(e.ctx, e.other.ID, "6a4e2f4e-3a38-4ab2-9fd1-1f0f0e4b8c11")
	require.ErrorIs(t, missingErr, helpdesk.ErrNotFound)
	assert.Equal(t, missingErr.Error(), err.Error())

	_, err = e.svc.AddComment(e.ctx, e.other.ID, tk.ID, "hello?")
	assert.ErrorIs(t, err, helpdesk.ErrNotFound)
	_, err = e.svc.ListComments(e.ctx, e.other.ID, tk.ID)
	assert.ErrorIs(t, err, helpdesk.ErrNotFound)

	got, err := e.svc.GetTicket(e.ctx, e.admin.ID, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, tk.ID, got.ID)

	e.ticket(t, e.other, "Someone else")
	mine, total, err := e.svc.ListTickets(e.ctx, e.user.ID, helpdesk.TicketFilter{CreatedBy: e.other.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, mine, 1)
	assert.Equal(t, tk.ID, mine[0].ID)

	_, total, err = e.svc.ListTickets(e.ctx, e.admin.ID, helpdesk.TicketFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestReassignTicket(t *testing.T) {
	e := setup(t)
	tk := e.ticket(t, e.user, "Slow wifi")
	inProgress := e.lookup(t, models.KindStatus, "In Progress")

	_, err := e.svc.ReassignTicket(e.ctx, e.user.ID, tk.ID, helpdesk.TicketChanges{StatusID: &inProgress.ID})
	assert.ErrorIs(t, err, helpdesk.ErrForbidden)

	got, err := e.svc.ReassignTicket(e.ctx, e.admin.ID, tk.ID, helpdesk.TicketChanges{StatusID: &inProgress.ID})
	require.NoError(t, err)
	assert.Equal(t, inProgress.ID, got.StatusID)
	assert.Equal(t, tk.PriorityID, got.PriorityID)
	require.NotNil(t, got.UpdatedAt)

	got2, err := e.svc.ReassignTicket(e.ctx, e.admin.ID, tk.ID, helpdesk.TicketChanges{})
	require.NoError(t, err)
	assert.False(t, got2.UpdatedAt.Before(*got.UpdatedAt))

	empty := ""
	_, err = e.svc.ReassignTicket(e.ctx, e.admin.ID, tk.ID, helpdesk.TicketChanges{PriorityID: &empty})
	assert.ErrorIs(t, err, helpdesk.ErrInvalid)

	unknown := "6a4e2f4e-3a38-4ab2-9fd1-1f0f0e4b8c11"
	_, err = e.svc.ReassignTicket(e.ctx, e.admin.ID, tk.ID, helpdesk.TicketChanges{StatusID: &unknown})
	assert.ErrorIs(t, err, helpdesk.ErrInvalid)
}

func TestCompleteTicket(t *testing.T) {
	e := setup(t)
	tk := e.ticket(t, e.user, "Install updates")
	completed := e.lookup(t, models.KindStatus, "completed")

	_, err := e.svc.CompleteTicket(e.ctx, e.user.ID, tk.ID)
	assert.ErrorIs(t, err, helpdesk.ErrForbidden)

	done, err := e.svc.CompleteTicket(e.ctx, e.admin.ID, tk.ID)
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, completed.ID, done.StatusID)
	assert.True(t, done.Completed())

	_, err = e.svc.CompleteTicket(e.ctx, e.admin.ID, tk.ID)
	assert.ErrorIs(t, err, helpdesk.ErrConflict)

	again, err := e.svc.GetTicket(e.ctx, e.admin.ID, tk.ID)
	require.NoError(t, err)
	assert.True(t, again.CompletedAt.Equal(*done.CompletedAt))

	stats, err := e.svc.Stats(e.ctx, e.user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{Total: 1, Completed: 1}, stats)
}

func TestCompleteTicketWithoutCompletedStatus(t *testing.T) {
	e := setup(t)
	tk := e.ticket(t, e.user, "Needs finishing")
	svc := helpdesk.New(e.store, nil, helpdesk.Options{CompletedStatus: "Resolved"}, nil)

	_, err := svc.CompleteTicket(e.ctx, e.admin.ID, tk.ID)
	assert.ErrorIs(t, err, helpdesk.ErrNotFound)

	got, err := e.svc.GetTicket(e.ctx, e.admin.ID, tk.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CompletedAt)
}

func TestComments(t *testing.T) {
	e := setup(t)
	tk := e.ticket(t, e.user, "Monitor flicker")

	c, err := e.svc.AddComment(e.ctx, e.user.ID, tk.ID, "Started this morning")
	require.NoError(t, err)
	_, err = e.svc.AddComment(e.ctx, e.admin.ID, tk.ID, "Which model?")
	require.NoError(t, err)
	_, err = e.svc.AddComment(e.ctx, e.user.ID, tk.ID, "   ")
	assert.ErrorIs(t, err, helpdesk.ErrInvalid)

	_, err = e.svc.UpdateComment(e.ctx, e.admin.ID, c.ID, "edited by admin")
	assert.ErrorIs(t, err, helpdesk.ErrForbidden)
	assert.ErrorIs(t, e.svc.DeleteComment(e.ctx, e.other.ID, c.ID), helpdesk.ErrForbidden)

	comments, err := e.svc.ListComments(e.ctx, e.user.ID, tk.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "Started this morning", comments[0].Content)

	edited, err := e.svc.UpdateComment(e.ctx, e.user.ID, c.ID, "Started yesterday")
	require.NoError(t, err)
	assert.Equal(t, "Started yesterday", edited.Content)
	assert.NotNil(t, edited.UpdatedAt)

	require.NoError(t, e.svc.DeleteComment(e.ctx, e.user.ID, c.ID))
	assert.ErrorIs(t, e.svc.DeleteComment(e.ctx, e.user.ID, c.ID), helpdesk.ErrNotFound)
}

func TestOperations(t *testing.T) {
	e := setup(t)
	tk := e.ticket(t, e.user, "Account locked")

	_, err := e.svc.AddOperation(e.ctx, e.user.ID, tk.ID, "unlocked")
	assert.ErrorIs(t, err, helpdesk.ErrForbidden)

	op, err := e.svc.AddOperation(e.ctx, e.admin.ID, tk.ID, "Unlocked account in directory")
	require.NoError(t, err)
	assert.Equal(t, e.admin.ID, op.UserID)

	ops, err := e.svc.ListOperations(e.ctx, e.user.ID, tk.ID)
	require.NoError(t, err)
	assert.Len(t, ops, 1)

	detail, err := e.svc.TicketDetail(e.ctx, e.user.ID, tk.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Operations, 1)
	assert.Empty(t, detail.Comments)

	assert.ErrorIs(t, e.svc.DeleteOperation(e.ctx, e.user.ID, op.ID), helpdesk.ErrForbidden)
	require.NoError(t, e.svc.DeleteOperation(e.ctx, e.admin.ID, op.ID))
	assert.ErrorIs(t, e.svc.DeleteOperation(e.ctx, e.admin.ID, op.ID), helpdesk.ErrNotFound)
}

func TestUserAdministration(t *testing.T) {
	e := setup(t)

	_, err := e.svc.CreateUser(e.ctx, e.user.ID, "Agent", "agent@example.com", "password123", true)
	assert.ErrorIs(t, err, helpdesk.ErrForbidden)

	agent, err := e.svc.CreateUser(e.ctx, e.admin.ID, "Agent", "agent@example.com", "password123", true)
	require.NoError(t, err)
	assert.True(t, agent.IsAdmin)

	no := false
	_, err = e.svc.UpdateUser(e.ctx, e.admin.ID, e.admin.ID, helpdesk.UserChanges{IsAdmin: &no})
	assert.ErrorIs(t, err, helpdesk.ErrConflict)
	demoted, err := e.svc.UpdateUser(e.ctx, e.admin.ID, agent.ID, helpdesk.UserChanges{IsAdmin: &no})
	require.NoError(t, err)
	assert.False(t, demoted.IsAdmin)

	assert.ErrorIs(t, e.svc.DeleteUser(e.ctx, e.admin.ID, e.admin.ID), helpdesk.ErrConflict)

	e.ticket(t, e.user, "Owned")
	assert.ErrorIs(t, e.svc.DeleteUser(e.ctx, e.admin.ID, e.user.ID), helpdesk.ErrConflict)
	require.NoError(t, e.svc.DeleteUser(e.ctx, e.admin.ID, agent.ID))
}

func TestExportTickets(t *testing.T) {
	e := setup(t)
	for i := 0; i < 3; i++ {
		e.ticket(t, e.user, "Batch ticket")
	}

	_, err := e.svc.ExportTickets(e.ctx, e.user.ID, helpdesk.TicketFilter{})
	assert.ErrorIs(t, err, helpdesk.ErrForbidden)

	all, err := e.svc.ExportTickets(e.ctx, e.admin.ID, helpdesk.TicketFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
