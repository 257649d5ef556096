// Package sqlstore implements store.Store on database/sql. The sqlite and
// postgres drivers differ only in their Dialect and migrations.
package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/dwello/internal/dwello/store"
)

// Migrator applies the driver's schema to db.
type Migrator func(db *sql.DB) error

type Options struct {
	// MaxOpenConns bounds the pool. Drivers apply it when opening.
	MaxOpenConns int

	// AcquireTimeout bounds the wait for a pooled connection. Zero waits for
	// as long as the request context allows.
	AcquireTimeout time.Duration
}

type Store struct {
	db      *sql.DB
	dialect Dialect
	migrate Migrator
	opts    Options
}

var _ store.Store = (*Store)(nil)

func New(db *sql.DB, d Dialect, migrate Migrator, opts Options) *Store {
	return &Store{db: db, dialect: d, migrate: migrate, opts: opts}
}

// DB exposes the pool for drivers and tests.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Dialect() Dialect { return s.dialect }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.pool().run(ctx, func(q DBTX) error {
		var one int
		return q.QueryRowContext(ctx, "SELECT 1").Scan(&one)
	})
}

func (s *Store) ApplyMigrations() error {
	if s.migrate == nil {
		return nil
	}
	return s.migrate(s.db)
}

func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	conn, err := acquire(ctx, s.db, s.opts.AcquireTimeout)
	if err != nil {
		return nil, err
	}
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return newTx(tx, conn, s.dialect), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	// Safe to call after commit.
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) pool() executor {
	return poolExecutor{db: s.db, acquireTimeout: s.opts.AcquireTimeout}
}

func (s *Store) base() repoBase { return repoBase{ex: s.pool(), d: s.dialect} }

func (s *Store) Users() store.Users       { return &usersRepo{s.base()} }
func (s *Store) Sessions() store.Sessions { return &sessionsRepo{s.base()} }
func (s *Store) Profiles() store.Profiles { return &profilesRepo{s.base()} }
func (s *Store) Houses() store.Houses     { return &housesRepo{s.base()} }
func (s *Store) Deals() store.Deals       { return &dealsRepo{s.base()} }
