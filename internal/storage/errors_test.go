package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"budget/internal/ports"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ports.Kind
	}{
		{"pg foreign key", &pgconn.PgError{Code: "23503"}, ports.KindForeignKey},
		{"pg unique", &pgconn.PgError{Code: "23505"}, ports.KindConstraint},
		{"pg check", &pgconn.PgError{Code: "23514"}, ports.KindConstraint},
		{"pg admin shutdown", &pgconn.PgError{Code: "57P01"}, ports.KindConnection},
		{"pg connection failure", &pgconn.PgError{Code: "08006"}, ports.KindConnection},
		{"pg invalid text", &pgconn.PgError{Code: "22P02"}, ports.KindQuery},
		{"wrapped pg foreign key", fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23503"}), ports.KindForeignKey},
		{"conn done", sql.ErrConnDone, ports.KindConnection},
		{"deadline", context.DeadlineExceeded, ports.KindConnection},
		{"sqlite message fallback", errors.New("FOREIGN KEY constraint failed (787)"), ports.KindForeignKey},
		{"unknown", errors.New("near \"SELEC\": syntax error"), ports.KindQuery},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.err))
		})
	}
}

func TestTranslateKeepsCause(t *testing.T) {
	cause := &pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"}
	err := translate("insert", "transactions", cause)

	var pgErr *pgconn.PgError
	assert.ErrorAs(t, err, &pgErr)
	assert.ErrorIs(t, err, ports.ErrForeignKey)
	assert.Nil(t, translate("insert", "transactions", nil))
}

func TestSQLiteDSN(t *testing.T) {
	dsn := SQLiteDSN("./data/budget.db")
	assert.Contains(t, dsn, "./data/budget.db?")
	assert.Contains(t, dsn, "foreign_keys%281%29")
	assert.Contains(t, dsn, "_time_format=sqlite")
}

func TestPrepareDSN(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "budget.db")
	dsn, err := PrepareDSN(SQLite, path)
	assert.NoError(t, err)
	assert.Equal(t, SQLiteDSN(path), dsn)
	assert.DirExists(t, filepath.Dir(path))

	dsn, err = PrepareDSN(Postgres, "postgres://localhost/budget")
	assert.NoError(t, err)
	assert.Equal(t, "postgres://localhost/budget", dsn)
}
