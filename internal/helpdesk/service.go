package helpdesk

import (
	"context"
	"errors"
	"html"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"helpdesk/internal/auth"
	"helpdesk/internal/models"
)

// Options tune the lifecycle rules. Zero values fall back to the defaults
// seeded at setup.
type Options struct {
	DefaultStatus     string
	DefaultPriority   string
	CompletedStatus   string
	HighPriority      string
	PasswordMinLength int
}

func (o Options) withDefaults() Options {
	if o.DefaultStatus == "" {
		o.DefaultStatus = "Open"
	}
	if o.DefaultPriority == "" {
		o.DefaultPriority = "Medium"
	}
	if o.CompletedStatus == "" {
		o.CompletedStatus = "Completed"
	}
	if o.HighPriority == "" {
		o.HighPriority = "High"
	}
	if o.PasswordMinLength <= 0 {
		o.PasswordMinLength = 6
	}
	return o
}

// Service applies the helpdesk authorization and ticket lifecycle rules on
// top of a Store. Every exported operation that acts on behalf of a caller
// resolves and checks that caller itself.
type Service struct {
	store  Store
	hasher *auth.PasswordHasher
	policy *bluemonday.Policy
	opts   Options
	logger *slog.Logger
	now    func() time.Time
}

// New builds a Service over store.
func New(store Store, hasher *auth.PasswordHasher, opts Options, logger *slog.Logger) *Service {
	if hasher == nil {
		hasher = auth.NewPasswordHasher(auth.DefaultCost)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		hasher: hasher,
		policy: bluemonday.StrictPolicy(),
		opts:   opts.withDefaults(),
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Caller resolves the authenticated user behind a session.
func (s *Service) Caller(ctx context.Context, userID string) (models.User, error) {
	if userID == "" {
		return models.User{}, Unauthorized("authentication required")
	}
	u, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return models.User{}, NotFound("user not found")
	}
	return u, err
}

// RequireAdmin resolves the caller and rejects non-admins.
func (s *Service) RequireAdmin(ctx context.Context, userID string) (models.User, error) {
	u, err := s.Caller(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	if !u.IsAdmin {
		return models.User{}, Forbidden("admin access required")
	}
	return u, nil
}

const maxCleanPasses = 8

// clean strips markup from user supplied text and returns plain text.
// Entity-encoded markup is decoded and stripped again until the text is
// stable, so no tag survives the final unescape.
func (s *Service) clean(v string) string {
	for range maxCleanPasses {
		next := html.UnescapeString(s.policy.Sanitize(v))
		if next == v {
			return strings.TrimSpace(next)
		}
		v = next
	}
	return strings.TrimSpace(s.policy.Sanitize(v))
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func validColor(c string) bool {
	return hexColor.MatchString(c)
}
