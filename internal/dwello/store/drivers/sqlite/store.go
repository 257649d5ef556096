package sqlite

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/aussiebroadwan/dwello/internal/dwello/store/sqlstore"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// NewStore opens a SQLite database at dsn, which is a file path or ":memory:".
// Foreign keys, a busy timeout and a sortable time format are set on every
// pooled connection through the DSN.
func NewStore(dsn string, opts sqlstore.Options) (*sqlstore.Store, error) {
	memory := dsn == ":memory:" || strings.Contains(dsn, "mode=memory")

	db, err := sql.Open("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, err
	}

	switch {
	case memory:
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	case opts.MaxOpenConns > 0:
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}

	return sqlstore.New(db, Dialect{}, ApplyMigrations, opts), nil
}

func withPragmas(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
}

// Dialect is the SQLite flavour of sqlstore.Dialect.
type Dialect struct{}

func (Dialect) Name() string { return "sqlite" }

func (Dialect) Rebind(query string) string { return sqlstore.RebindNumbered(query) }

func (Dialect) IsUniqueViolation(err error) bool {
	var e *msqlite.Error
	if errors.As(err, &e) {
		switch e.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// LockUserQuery is a no-op write. It makes the transaction take SQLite's
// reserved lock up front, so concurrent rotations for any user queue on
// busy_timeout instead of interleaving.
func (Dialect) LockUserQuery() string {
	return `UPDATE users SET updated_at = updated_at WHERE id = $1 RETURNING id`
}
