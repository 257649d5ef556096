package sqlstore

import (
	"context"
	"database/sql"
	"regexp"
)

// DBTX is the subset of database/sql the repos use. *sql.Conn and *sql.Tx
// both satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Dialect hides the differences between the supported databases. Queries are
// written once with Postgres style $N placeholders.
type Dialect interface {
	Name() string

	// Rebind converts $N placeholders to the driver's syntax.
	Rebind(query string) string

	// IsUniqueViolation reports whether err is a unique or primary key
	// constraint failure.
	IsUniqueViolation(err error) bool

	// LockUserQuery takes a row write lock on users.id = $1 for the rest of
	// the transaction.
	LockUserQuery() string
}

var placeholderRe = regexp.MustCompile(`\$(\d+)`)

// RebindNumbered rewrites $N to ?N, which SQLite binds by position and which,
// unlike a bare ?, may repeat.
func RebindNumbered(query string) string {
	return placeholderRe.ReplaceAllString(query, "?$1")
}
