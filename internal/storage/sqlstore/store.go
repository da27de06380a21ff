package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"helpdesk/internal/helpdesk"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Store wraps access to the relational database and implements helpdesk.Store.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
	driver string
	now    func() time.Time
	newID  func() string
}

var _ helpdesk.Store = (*Store)(nil)

// Options configures Open.
type Options struct {
	// MaxOpenConns bounds the pool for PostgreSQL. SQLite always uses a
	// single connection.
	MaxOpenConns int
}

// Open connects to the database and runs the required migrations. For
// SQLite dsn is a file path.
func Open(driver, dsn string, logger *slog.Logger, opts Options) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty database dsn")
	}

	var (
		conn *sqlx.DB
		err  error
	)
	switch driver {
	case DriverSQLite, "":
		driver = DriverSQLite
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}
		conn, err = sqlx.Open(DriverSQLite, fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=ON", dsn))
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		conn.SetMaxOpenConns(1)
		conn.SetConnMaxLifetime(0)
	case DriverPostgres:
		conn, err = sqlx.Open(DriverPostgres, dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if opts.MaxOpenConns > 0 {
			conn.SetMaxOpenConns(opts.MaxOpenConns)
		}
		conn.SetConnMaxLifetime(30 * time.Minute)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	s := New(conn, logger)
	if err := s.migrate(context.Background()); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already opened connection without migrating it.
func New(db *sqlx.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		db:     db,
		logger: logger,
		driver: db.DriverName(),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// Close releases the database resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schema(s.driver) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	s.logger.Debug("schema migrated", "driver", s.driver)
	return nil
}

// inTx runs fn inside a transaction and commits when it returns nil.
func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func affectedOne(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func isUniqueViolation(err error) bool {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique || liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

// writeError maps constraint failures of inserts and updates.
func writeError(op string, err error, duplicate, missingRef string) error {
	switch {
	case isUniqueViolation(err):
		return helpdesk.Conflict(duplicate)
	case isForeignKeyViolation(err):
		return helpdesk.Invalid(missingRef)
	}
	return fmt.Errorf("%s: %w", op, err)
}
