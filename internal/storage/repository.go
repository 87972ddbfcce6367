package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"

	"budget/internal/ports"
)

// Options configures a relational backend.
type Options struct {
	Dialect Dialect
	// DSN is a file path for SQLite or a connection URL for PostgreSQL.
	DSN string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// Migrate applies embedded migrations before the backend is returned.
	Migrate bool
}

// Repository is the relational persistence backend shared by the SQLite
// and PostgreSQL dialects.
type Repository struct {
	db      *sqlx.DB
	dialect Dialect
	logger  *slog.Logger
}

var _ ports.Backend = (*Repository)(nil)

// Open connects, verifies the connection and optionally migrates.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (*Repository, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dsn, err := PrepareDSN(opts.Dialect, opts.DSN)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(opts.Dialect.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", opts.Dialect.Name, err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if opts.Migrate {
		if err := RunMigrations(opts.Dialect, dsn); err != nil {
			db.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	logger.Info("Relational backend ready", "dialect", opts.Dialect.Name, "migrated", opts.Migrate)

	return NewRepository(db, opts.Dialect, logger), nil
}

// PrepareDSN turns a configured DSN into a driver DSN. For SQLite it
// creates the parent directory of the database file.
func PrepareDSN(d Dialect, raw string) (string, error) {
	if d.Name != SQLite.Name {
		return raw, nil
	}
	if dir := filepath.Dir(raw); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("create db directory: %w", err)
		}
	}
	return SQLiteDSN(raw), nil
}

// NewRepository wraps an existing handle. Used by Open and by tests.
func NewRepository(db *sqlx.DB, dialect Dialect, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, dialect: dialect, logger: logger}
}

func (r *Repository) Name() string { return r.dialect.Name }

// Acquire checks out a dedicated pool connection.
func (r *Repository) Acquire(ctx context.Context) (ports.Conn, error) {
	c, err := r.db.Connx(ctx)
	if err != nil {
		return nil, translate("acquire", "", err)
	}
	return &conn{c: c, sb: r.dialect.builder(), logger: r.logger}, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return translate("ping", "", err)
	}
	return nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// DB exposes the underlying handle for maintenance commands.
func (r *Repository) DB() *sqlx.DB { return r.db }
