package helpdesk

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"helpdesk/internal/auth"
	"helpdesk/internal/models"
)

// Register creates a regular account. Self-registration never grants admin.
func (s *Service) Register(ctx context.Context, name, email, password string) (models.User, error) {
	return s.createUser(ctx, name, email, password, false)
}

// Authenticate checks credentials and returns the matching user.
func (s *Service) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	u, hash, err := s.store.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return models.User{}, Unauthorized("invalid credentials")
	}
	if err != nil {
		return models.User{}, err
	}
	if !s.hasher.Verify(hash, password) {
		return models.User{}, Unauthorized("invalid credentials")
	}
	return u, nil
}

// ListUsers returns every account. Admin only.
func (s *Service) ListUsers(ctx context.Context, callerID string) ([]models.User, error) {
	if _, err := s.RequireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	return s.store.ListUsers(ctx)
}

// CreateUser lets an admin open an account, optionally with admin rights.
func (s *Service) CreateUser(ctx context.Context, callerID, name, email, password string, isAdmin bool) (models.User, error) {
	if _, err := s.RequireAdmin(ctx, callerID); err != nil {
		return models.User{}, err
	}
	return s.createUser(ctx, name, email, password, isAdmin)
}

// UpdateUser renames a user or toggles the admin flag. Admin only; an admin
// cannot revoke their own rights.
func (s *Service) UpdateUser(ctx context.Context, callerID, id string, changes UserChanges) (models.User, error) {
	caller, err := s.RequireAdmin(ctx, callerID)
	if err != nil {
		return models.User{}, err
	}
	if changes.Name != nil {
		name := s.clean(*changes.Name)
		if name == "" {
			return models.User{}, Invalid("name must not be empty")
		}
		changes.Name = &name
	}
	if changes.IsAdmin != nil && !*changes.IsAdmin && caller.ID == id {
		return models.User{}, Conflict("admins cannot revoke their own admin rights")
	}
	return s.store.UpdateUser(ctx, id, changes)
}

// DeleteUser removes an account that owns no tickets. Admin only.
func (s *Service) DeleteUser(ctx context.Context, callerID, id string) error {
	caller, err := s.RequireAdmin(ctx, callerID)
	if err != nil {
		return err
	}
	if caller.ID == id {
		return Conflict("admins cannot delete their own account")
	}
	return s.store.DeleteUser(ctx, id)
}

func (s *Service) createUser(ctx context.Context, name, email, password string, isAdmin bool) (models.User, error) {
	name = s.clean(name)
	email = normalizeEmail(email)
	if name == "" {
		return models.User{}, Invalid("name is required")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return models.User{}, Invalid("a valid email is required")
	}
	if len(password) < s.opts.PasswordMinLength {
		return models.User{}, Invalid(fmt.Sprintf("password must be at least %d characters", s.opts.PasswordMinLength))
	}

	_, _, err := s.store.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return models.User{}, Conflict("email already in use")
	case !errors.Is(err, ErrNotFound):
		return models.User{}, err
	}

	hash, err := s.hasher.Hash(password)
	if auth.IsPasswordTooLong(err) {
		return models.User{}, Invalid("password is too long")
	}
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.store.CreateUser(ctx, NewUser{Name: name, Email: email, PasswordHash: hash, IsAdmin: isAdmin})
	if errors.Is(err, ErrConflict) {
		return models.User{}, Conflict("email already in use")
	}
	if err != nil {
		return models.User{}, err
	}
	s.logger.Info("user created", "user_id", u.ID, "admin", u.IsAdmin)
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
