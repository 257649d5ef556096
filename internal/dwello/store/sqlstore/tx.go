package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aussiebroadwan/dwello/internal/dwello/store"
)

type txStore struct {
	tx      *sql.Tx
	conn    *sql.Conn
	dialect Dialect
}

func newTx(tx *sql.Tx, conn *sql.Conn, d Dialect) *txStore {
	return &txStore{tx: tx, conn: conn, dialect: d}
}

func (t *txStore) Commit() error {
	err := t.tx.Commit()
	t.release()
	return err
}

// Rollback after Commit is a no-op.
func (t *txStore) Rollback() error {
	err := t.tx.Rollback()
	t.release()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

func (t *txStore) release() {
	if t.conn != nil {
		_ = t.conn.Close()
		t.conn = nil
	}
}

// Close is a no-op; the outer store owns the pool.
func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) { return nil, sql.ErrTxDone }

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

// ApplyMigrations is a no-op; migrations run before any transaction.
func (t *txStore) ApplyMigrations() error { return nil }

func (t *txStore) base() repoBase { return repoBase{ex: txExecutor{tx: t.tx}, d: t.dialect} }

func (t *txStore) Users() store.Users       { return &usersRepo{t.base()} }
func (t *txStore) Sessions() store.Sessions { return &sessionsRepo{t.base()} }
func (t *txStore) Profiles() store.Profiles { return &profilesRepo{t.base()} }
func (t *txStore) Houses() store.Houses     { return &housesRepo{t.base()} }
func (t *txStore) Deals() store.Deals       { return &dealsRepo{t.base()} }
