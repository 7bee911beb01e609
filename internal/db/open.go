// Package db opens the credential store and embeds its schema migrations.
package db

import (
	"database/sql"
	"errors"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// ErrUnsupportedURL is returned when the database URL scheme is not recognized.
var ErrUnsupportedURL = errors.New("unsupported database URL")

// Dialect identifies the SQL dialect behind a database URL. Migrations are
// embedded per dialect under migrations/<dialect>.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// ParseURL splits a database URL into driver name, DSN, and dialect.
// sqlite://<path> maps to the modernc sqlite driver; postgres:// and
// postgresql:// DSNs map to the pgx stdlib driver.
func ParseURL(url string) (driver, dsn string, dialect Dialect, err error) {
	switch {
	case strings.HasPrefix(url, "sqlite://"):
		return "sqlite", strings.TrimPrefix(url, "sqlite://"), DialectSQLite, nil
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return "pgx", url, DialectPostgres, nil
	default:
		return "", "", "", ErrUnsupportedURL
	}
}

// Open opens the store behind url and verifies connectivity with a ping.
// Caller must call Close when done. The returned *sql.DB manages its own
// connection pool; callers must not assume any continuity between calls.
func Open(url string) (*sql.DB, Dialect, error) {
	driver, dsn, dialect, err := ParseURL(url)
	if err != nil {
		return nil, "", err
	}
	database, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, "", err
	}
	if err := database.Ping(); err != nil {
		_ = database.Close()
		return nil, "", err
	}
	return database, dialect, nil
}
