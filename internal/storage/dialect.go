package storage

import (
	"net/url"

	"github.com/Masterminds/squirrel"

	// Database drivers registered with database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect captures what differs between the relational backends.
type Dialect struct {
	// Name selects the migration directory.
	Name string
	// DriverName is the database/sql driver.
	DriverName string
	// Placeholder is the bind variable style for squirrel.
	Placeholder squirrel.PlaceholderFormat
}

var (
	SQLite = Dialect{
		Name:        "sqlite",
		DriverName:  "sqlite",
		Placeholder: squirrel.Question,
	}
	Postgres = Dialect{
		Name:        "postgres",
		DriverName:  "pgx",
		Placeholder: squirrel.Dollar,
	}
)

// builder returns a statement builder using the dialect's placeholders.
func (d Dialect) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(d.Placeholder)
}

// SQLiteDSN turns a file path into a modernc DSN with foreign keys enforced
// and sortable timestamp text.
func SQLiteDSN(path string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Set("_time_format", "sqlite")
	return path + "?" + q.Encode()
}
