package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"helpdesk/internal/helpdesk"
	"helpdesk/internal/models"
)

const lookupColumns = `id, name, color, created_at, updated_at`

func tableFor(kind models.LookupKind) (lookupTable, error) {
	lt, ok := lookupTables[kind]
	if !ok {
		return lookupTable{}, helpdesk.Invalid(fmt.Sprintf("unknown lookup kind %q", kind))
	}
	return lt, nil
}

// ListLookups retrieves the rows of a reference table ordered by name,
// optionally restricted to one name compared without case.
func (s *Store) ListLookups(ctx context.Context, kind models.LookupKind, name string) ([]models.Lookup, error) {
	lt, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + lookupColumns + ` FROM ` + lt.table
	var args []any
	if name = strings.TrimSpace(name); name != "" {
		query += ` WHERE LOWER(name) = LOWER(?)`
		args = append(args, name)
	}
	query += ` ORDER BY name ASC`

	lookups := []models.Lookup{}
	if err := s.db.SelectContext(ctx, &lookups, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", lt.table, err)
	}
	return lookups, nil
}

// GetLookup fetches a single reference row by id.
func (s *Store) GetLookup(ctx context.Context, kind models.LookupKind, id string) (models.Lookup, error) {
	lt, err := tableFor(kind)
	if err != nil {
		return models.Lookup{}, err
	}
	var l models.Lookup
	err = s.db.GetContext(ctx, &l, s.db.Rebind(`SELECT `+lookupColumns+` FROM `+lt.table+` WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Lookup{}, helpdesk.NotFound(fmt.Sprintf("%s not found", kind))
	}
	if err != nil {
		return models.Lookup{}, fmt.Errorf("get %s: %w", kind, err)
	}
	return l, nil
}

// CreateLookup persists a new reference row.
func (s *Store) CreateLookup(ctx context.Context, kind models.LookupKind, name, color string) (models.Lookup, error) {
	lt, err := tableFor(kind)
	if err != nil {
		return models.Lookup{}, err
	}
	id := s.newID()
	_, err = s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO `+lt.table+`(id, name, color, created_at) VALUES(?, ?, ?, ?)`), id, name, color, s.now())
	if err != nil {
		return models.Lookup{}, writeError("insert "+string(kind), err, fmt.Sprintf("%s name already exists", kind), "invalid reference")
	}
	return s.GetLookup(ctx, kind, id)
}

// UpdateLookup renames and/or recolors a reference row.
func (s *Store) UpdateLookup(ctx context.Context, kind models.LookupKind, id string, changes helpdesk.LookupChanges) (models.Lookup, error) {
	lt, err := tableFor(kind)
	if err != nil {
		return models.Lookup{}, err
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE `+lt.table+` SET name = COALESCE(?, name), color = COALESCE(?, color), updated_at = ? WHERE id = ?`),
		changes.Name, changes.Color, s.now(), id)
	if err != nil {
		return models.Lookup{}, writeError("update "+string(kind), err, fmt.Sprintf("%s name already exists", kind), "invalid reference")
	}
	ok, err := affectedOne(res)
	if err != nil {
		return models.Lookup{}, err
	}
	if !ok {
		return models.Lookup{}, helpdesk.NotFound(fmt.Sprintf("%s not found", kind))
	}
	return s.GetLookup(ctx, kind, id)
}

// DeleteLookup removes a reference row in the same statement that verifies
// no ticket uses it.
func (s *Store) DeleteLookup(ctx context.Context, kind models.LookupKind, id string) error {
	lt, err := tableFor(kind)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ? AND NOT EXISTS (SELECT 1 FROM tickets WHERE %s = ?)`, lt.table, lt.column)
	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), id, id)
	if isForeignKeyViolation(err) {
		return helpdesk.Conflict(fmt.Sprintf("cannot delete %s that is in use by tickets", kind))
	}
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	ok, err := affectedOne(res)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if _, err := s.GetLookup(ctx, kind, id); err != nil {
		return err
	}
	return helpdesk.Conflict(fmt.Sprintf("cannot delete %s that is in use by tickets", kind))
}
