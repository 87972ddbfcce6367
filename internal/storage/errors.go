package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"budget/internal/ports"
)

// translate classifies a driver error into a ports.BackendError.
// sql.ErrNoRows is handled by callers before reaching here.
func translate(op, table string, err error) error {
	if err == nil {
		return nil
	}
	return ports.NewBackendError(op, table, classify(err), err)
}

func classify(err error) ports.Kind {
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, context.DeadlineExceeded) {
		return ports.KindConnection
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23503":
			return ports.KindForeignKey
		case strings.HasPrefix(pgErr.Code, "23"):
			return ports.KindConstraint
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "57P"):
			return ports.KindConnection
		default:
			return ports.KindQuery
		}
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return ports.KindConnection
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		switch {
		case code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return ports.KindForeignKey
		case code&0xff == sqlite3.SQLITE_CONSTRAINT:
			return ports.KindConstraint
		case code&0xff == sqlite3.SQLITE_CANTOPEN, code&0xff == sqlite3.SQLITE_BUSY, code&0xff == sqlite3.SQLITE_LOCKED:
			return ports.KindConnection
		default:
			return ports.KindQuery
		}
	}

	return ports.ClassifyMessage(err)
}
