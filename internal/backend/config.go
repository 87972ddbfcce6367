package backend

import (
	"errors"
	"fmt"

	"budget/internal/config"
	"budget/internal/storage"
)

var ErrNotRelational = errors.New("backend has no relational schema")

// FromAppConfig picks the backend settings out of the application config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	t := BackendType(appConfig.DataBackend)
	if !t.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:            t,
		SQLiteDBPath:    appConfig.SQLiteDBPath,
		DatabaseURL:     appConfig.DatabaseURL,
		MaxOpenConns:    appConfig.DBMaxOpenConns,
		MaxIdleConns:    appConfig.DBMaxIdleConns,
		ConnMaxLifetime: appConfig.DBConnMaxLifetime,
		Migrate:         appConfig.AutoMigrate,
		SnapshotPath:    appConfig.MemorySnapshotPath,
		SeedFile:        appConfig.MemorySeedFile,
	}, nil
}

func (c Config) Validate() error {
	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return errors.New("SQLite database path is required for sqlite backend")
		}
	case PostgresBackend:
		if c.DatabaseURL == "" {
			return errors.New("database URL is required for postgres backend")
		}
	case MemoryBackend:
	default:
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	return nil
}

// Relational returns the dialect and configured DSN of a sqlite or
// postgres backend. The DSN is a file path for sqlite.
func (c Config) Relational() (storage.Dialect, string, error) {
	if err := c.Validate(); err != nil {
		return storage.Dialect{}, "", err
	}
	switch c.Type {
	case SQLiteBackend:
		return storage.SQLite, c.SQLiteDBPath, nil
	case PostgresBackend:
		return storage.Postgres, c.DatabaseURL, nil
	default:
		return storage.Dialect{}, "", fmt.Errorf("%s: %w", c.Type, ErrNotRelational)
	}
}
