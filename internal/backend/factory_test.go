package backend

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"budget/internal/config"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:        "postgres",
		DatabaseURL:        "postgres://localhost/budget",
		DBMaxOpenConns:     8,
		AutoMigrate:        true,
		MemorySnapshotPath: "ignored.json",
	})
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if cfg.Type != PostgresBackend || cfg.DatabaseURL != "postgres://localhost/budget" || cfg.MaxOpenConns != 8 || !cfg.Migrate {
		t.Errorf("unexpected backend config: %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"sqlite with path", Config{Type: SQLiteBackend, SQLiteDBPath: "budget.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"postgres with url", Config{Type: PostgresBackend, DatabaseURL: "postgres://x"}, false},
		{"postgres without url", Config{Type: PostgresBackend}, true},
		{"memory", Config{Type: MemoryBackend}, false},
		{"unknown", Config{Type: "sheets"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigRelational(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		wantDialect string
		wantDSN     string
		wantErr     error
	}{
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "data/budget.db"}, "sqlite", "data/budget.db", nil},
		{"postgres", Config{Type: PostgresBackend, DatabaseURL: "postgres://x/budget"}, "postgres", "postgres://x/budget", nil},
		{"memory", Config{Type: MemoryBackend}, "", "", ErrNotRelational},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, dsn, err := tt.config.Relational()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Relational() error = %v, want %v", err, tt.wantErr)
			}
			if d.Name != tt.wantDialect || dsn != tt.wantDSN {
				t.Errorf("Relational() = %s, %s; want %s, %s", d.Name, dsn, tt.wantDialect, tt.wantDSN)
			}
		})
	}

	if _, _, err := (Config{Type: SQLiteBackend}).Relational(); err == nil {
		t.Error("expected validation error for sqlite without path")
	}
	if !PostgresBackend.IsRelational() || MemoryBackend.IsRelational() {
		t.Error("IsRelational() misclassified a backend")
	}
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)

	t.Run("memory", func(t *testing.T) {
		res, err := f.CreateBackend(ctx, Config{Type: MemoryBackend})
		if err != nil {
			t.Fatalf("CreateBackend() error = %v", err)
		}
		defer res.Cleanup()
		if res.Backend.Name() != "memory" {
			t.Errorf("Name() = %s, want memory", res.Backend.Name())
		}
		if err := res.Backend.Ping(ctx); err != nil {
			t.Errorf("Ping() error = %v", err)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "budget.db")
		res, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: path, Migrate: true})
		if err != nil {
			t.Fatalf("CreateBackend() error = %v", err)
		}
		defer res.Cleanup()
		conn, err := res.Backend.Acquire(ctx)
		if err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
		defer conn.Release()
		if n, err := conn.CountActiveCategories(ctx); err != nil || n != 0 {
			t.Errorf("CountActiveCategories() = %d, %v", n, err)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		if _, err := f.CreateBackend(ctx, Config{Type: PostgresBackend}); err == nil {
			t.Error("expected error for postgres without url")
		}
	})
}
