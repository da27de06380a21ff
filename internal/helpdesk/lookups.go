package helpdesk

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"helpdesk/internal/models"
)

var palette = []string{
	"#2563eb", // blue-600
	"#7c3aed", // violet-600
	"#dc2626", // red-600
	"#059669", // green-600
	"#ea580c", // orange-600
	"#d97706", // amber-600
	"#0ea5e9", // sky-500
}

func randomPaletteColor() string {
	return palette[rand.IntN(len(palette))]
}

// ListLookups returns the rows of one reference table ordered by name. A
// non-empty name keeps only the rows whose name matches it ignoring case.
func (s *Service) ListLookups(ctx context.Context, kind models.LookupKind, name string) ([]models.Lookup, error) {
	return s.store.ListLookups(ctx, kind, name)
}

// CreateLookup adds a category, priority or status. Admin only.
func (s *Service) CreateLookup(ctx context.Context, callerID string, kind models.LookupKind, name, color string) (models.Lookup, error) {
	if _, err := s.RequireAdmin(ctx, callerID); err != nil {
		return models.Lookup{}, err
	}
	name = s.clean(name)
	if name == "" {
		return models.Lookup{}, Invalid(fmt.Sprintf("%s name must not be empty", kind))
	}
	if color == "" {
		color = randomPaletteColor()
	}
	if !validColor(color) {
		return models.Lookup{}, Invalid("color must be a hex value such as #2563eb")
	}

	l, err := s.store.CreateLookup(ctx, kind, name, color)
	if errors.Is(err, ErrConflict) {
		return models.Lookup{}, Conflict(fmt.Sprintf("%s %q already exists", kind, name))
	}
	return l, err
}

// UpdateLookup renames or recolors a reference row. Admin only.
func (s *Service) UpdateLookup(ctx context.Context, callerID string, kind models.LookupKind, id string, changes LookupChanges) (models.Lookup, error) {
	if _, err := s.RequireAdmin(ctx, callerID); err != nil {
		return models.Lookup{}, err
	}
	if changes.Name != nil {
		name := s.clean(*changes.Name)
		if name == "" {
			return models.Lookup{}, Invalid(fmt.Sprintf("%s name must not be empty", kind))
		}
		changes.Name = &name
	}
	if changes.Color != nil && !validColor(*changes.Color) {
		return models.Lookup{}, Invalid("color must be a hex value such as #2563eb")
	}

	l, err := s.store.UpdateLookup(ctx, kind, id, changes)
	if errors.Is(err, ErrConflict) && changes.Name != nil {
		return models.Lookup{}, Conflict(fmt.Sprintf("%s %q already exists", kind, *changes.Name))
	}
	return l, err
}

// DeleteLookup removes a reference row no ticket uses. Admin only.
func (s *Service) DeleteLookup(ctx context.Context, callerID string, kind models.LookupKind, id string) error {
	if _, err := s.RequireAdmin(ctx, callerID); err != nil {
		return err
	}
	return s.store.DeleteLookup(ctx, kind, id)
}
