package postgres

import (
	"database/sql"
	"errors"

	"github.com/aussiebroadwan/dwello/internal/dwello/store/drivers/postgres/migrations"
	"github.com/aussiebroadwan/dwello/internal/dwello/store/sqlstore"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// uniqueViolation is SQLSTATE 23505.
const uniqueViolation = "23505"

// NewStore opens a Postgres pool through pgx's database/sql driver.
func NewStore(dsn string, opts sqlstore.Options) (*sqlstore.Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
		db.SetMaxIdleConns(opts.MaxOpenConns)
	}
	return sqlstore.New(db, Dialect{}, ApplyMigrations, opts), nil
}

// ApplyMigrations runs the embedded goose migrations.
func ApplyMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.Up(db, ".")
}

// Dialect is the Postgres flavour of sqlstore.Dialect.
type Dialect struct{}

func (Dialect) Name() string { return "postgres" }

func (Dialect) Rebind(query string) string { return query }

func (Dialect) IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (Dialect) LockUserQuery() string {
	return `SELECT id FROM users WHERE id = $1 FOR UPDATE`
}
