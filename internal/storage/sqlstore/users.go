package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"helpdesk/internal/helpdesk"
	"helpdesk/internal/models"
)

const userColumns = `id, name, email, is_admin, created_at, updated_at`

type userWithHash struct {
	models.User
	PasswordHash string `db:"password_hash"`
}

// CreateUser persists a new account.
func (s *Store) CreateUser(ctx context.Context, u helpdesk.NewUser) (models.User, error) {
	id := s.newID()
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO users(id, name, email, password_hash, is_admin, created_at) VALUES(?, ?, ?, ?, ?, ?)`),
		id, u.Name, u.Email, u.PasswordHash, u.IsAdmin, s.now())
	if err != nil {
		return models.User{}, writeError("insert user", err, "email already in use", "invalid user reference")
	}
	return s.GetUser(ctx, id)
}

// GetUser fetches a single user by id.
func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u, s.db.Rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, helpdesk.NotFound("user not found")
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetUserByEmail fetches a user and its password hash by email, ignoring case.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, string, error) {
	var u userWithHash
	err := s.db.GetContext(ctx, &u, s.db.Rebind(`SELECT `+userColumns+`, password_hash FROM users WHERE LOWER(email) = LOWER(?)`), email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, "", helpdesk.NotFound("user not found")
	}
	if err != nil {
		return models.User{}, "", fmt.Errorf("get user by email: %w", err)
	}
	return u.User, u.PasswordHash, nil
}

// ListUsers retrieves all users ordered by name.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := s.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY name ASC, email ASC`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateUser changes the name or admin flag of a user.
func (s *Store) UpdateUser(ctx context.Context, id string, changes helpdesk.UserChanges) (models.User, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE users SET name = COALESCE(?, name), is_admin = COALESCE(?, is_admin), updated_at = ? WHERE id = ?`),
		changes.Name, changes.IsAdmin, s.now(), id)
	if err != nil {
		return models.User{}, fmt.Errorf("update user: %w", err)
	}
	ok, err := affectedOne(res)
	if err != nil {
		return models.User{}, err
	}
	if !ok {
		return models.User{}, helpdesk.NotFound("user not found")
	}
	return s.GetUser(ctx, id)
}

// DeleteUser removes a user that no ticket references.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM users WHERE id = ? AND NOT EXISTS (SELECT 1 FROM tickets WHERE created_by_id = ?)`), id, id)
	if isForeignKeyViolation(err) {
		return helpdesk.Conflict("user still has comments or operations")
	}
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	ok, err := affectedOne(res)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}
	return helpdesk.Conflict("cannot delete a user that has tickets")
}
