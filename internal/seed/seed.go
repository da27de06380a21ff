package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"

	"helpdesk/internal/auth"
	"helpdesk/internal/helpdesk"
	"helpdesk/internal/models"
)

//go:embed seed.yaml
var defaultDocument []byte

// Entry is one reference row to create.
type Entry struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color"`
}

// Document lists the reference data a fresh installation starts with.
type Document struct {
	Categories []Entry `yaml:"categories"`
	Priorities []Entry `yaml:"priorities"`
	Statuses   []Entry `yaml:"statuses"`
}

func (d Document) entries(kind models.LookupKind) []Entry {
	switch kind {
	case models.KindCategory:
		return d.Categories
	case models.KindPriority:
		return d.Priorities
	case models.KindStatus:
		return d.Statuses
	}
	return nil
}

// Admin is the optional first administrator.
type Admin struct {
	Name     string
	Email    string
	Password string
}

// Default returns the embedded document.
func Default() (Document, error) {
	return Parse(defaultDocument)
}

// Parse decodes a seed document.
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parse seed document: %w", err)
	}
	return doc, nil
}

// Result counts what Run created.
type Result struct {
	Lookups int
	Admin   bool
}

// Run creates every lookup of doc that does not exist yet, matching names
// without case, and the admin account when one is given and its email is
// unused. Running it twice changes nothing.
func Run(ctx context.Context, store helpdesk.Store, hasher *auth.PasswordHasher, doc Document, admin *Admin, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var res Result

	for _, kind := range models.LookupKinds {
		for _, e := range doc.entries(kind) {
			name := strings.TrimSpace(e.Name)
			if name == "" {
				continue
			}
			existing, err := store.ListLookups(ctx, kind, name)
			if err != nil {
				return res, err
			}
			if len(existing) > 0 {
				continue
			}
			if _, err := store.CreateLookup(ctx, kind, name, e.Color); err != nil {
				if errors.Is(err, helpdesk.ErrConflict) {
					continue
				}
				return res, fmt.Errorf("seed %s %q: %w", kind, name, err)
			}
			res.Lookups++
			logger.Debug("seeded lookup", "kind", kind, "name", name)
		}
	}

	if admin != nil && admin.Email != "" {
		created, err := seedAdmin(ctx, store, hasher, *admin)
		if err != nil {
			return res, err
		}
		res.Admin = created
	}

	logger.Info("seed finished", "lookups_created", res.Lookups, "admin_created", res.Admin)
	return res, nil
}

func seedAdmin(ctx context.Context, store helpdesk.Store, hasher *auth.PasswordHasher, a Admin) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(a.Email))
	if _, _, err := store.GetUserByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, helpdesk.ErrNotFound) {
		return false, err
	}
	if a.Password == "" {
		return false, errors.New("seed admin password is required")
	}
	if a.Name == "" {
		a.Name = "Admin"
	}
	if hasher == nil {
		hasher = auth.NewPasswordHasher(auth.DefaultCost)
	}
	hash, err := hasher.Hash(a.Password)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	_, err = store.CreateUser(ctx, helpdesk.NewUser{Name: a.Name, Email: email, PasswordHash: hash, IsAdmin: true})
	if errors.Is(err, helpdesk.ErrConflict) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	return true, nil
}
