package backend

import (
	"context"
	"fmt"
	"log/slog"

	"budget/internal/memory"
	"budget/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend validates the config and opens the selected backend.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if config.Type == MemoryBackend {
		return f.createMemoryBackend(config)
	}
	dialect, dsn, err := config.Relational()
	if err != nil {
		return nil, err
	}
	return f.createRelationalBackend(ctx, dialect, dsn, config)
}

func (f *DefaultFactory) createRelationalBackend(ctx context.Context, dialect storage.Dialect, dsn string, config Config) (*BackendResult, error) {
	repo, err := storage.Open(ctx, storage.Options{
		Dialect:         dialect,
		DSN:             dsn,
		MaxOpenConns:    config.MaxOpenConns,
		MaxIdleConns:    config.MaxIdleConns,
		ConnMaxLifetime: config.ConnMaxLifetime,
		Migrate:         config.Migrate,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s backend: %w", dialect.Name, err)
	}

	f.logger.Info("Initialized relational backend",
		"dialect", dialect.Name,
		"max_open_conns", config.MaxOpenConns,
		"migrated", config.Migrate)

	return &BackendResult{
		Backend: repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	store, err := memory.Open(memory.Options{
		SnapshotPath: config.SnapshotPath,
		SeedFile:     config.SeedFile,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize memory backend: %w", err)
	}

	f.logger.Info("Initialized memory backend",
		"snapshot", config.SnapshotPath,
		"persistent", config.SnapshotPath != "")

	return &BackendResult{
		Backend: store,
		Cleanup: store.Close,
	}, nil
}
