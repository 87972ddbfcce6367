package backend

import (
	"context"
	"time"

	"budget/internal/ports"
)

// CleanupFunc releases whatever the backend holds open.
type CleanupFunc func() error

// BackendResult pairs a backend with its cleanup. Callers own the cleanup.
type BackendResult struct {
	Backend ports.Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config selects a backend and carries the settings it needs. Fields of
// the unselected backends are ignored.
type Config struct {
	Type BackendType

	SQLiteDBPath string
	DatabaseURL  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Migrate         bool

	// SnapshotPath persists the memory backend across restarts. SeedFile
	// is loaded only when there is no snapshot yet.
	SnapshotPath string
	SeedFile     string
}

type BackendType string

const (
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
	MemoryBackend   BackendType = "memory"
)

func (bt BackendType) IsValid() bool {
	return bt == SQLiteBackend || bt == PostgresBackend || bt == MemoryBackend
}

// IsRelational reports whether the backend keeps a migrated schema.
func (bt BackendType) IsRelational() bool {
	return bt == SQLiteBackend || bt == PostgresBackend
}
