package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/dwello/internal/dwello/store"
)

// executor hands a DBTX to fn and is responsible for releasing it.
type executor interface {
	run(ctx context.Context, fn func(DBTX) error) error
}

// poolExecutor checks a dedicated connection out of the pool for each call.
// Waiting for a free connection is bounded by acquireTimeout.
type poolExecutor struct {
	db             *sql.DB
	acquireTimeout time.Duration
}

func (p poolExecutor) run(ctx context.Context, fn func(DBTX) error) error {
	conn, err := acquire(ctx, p.db, p.acquireTimeout)
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(conn)
}

func acquire(ctx context.Context, db *sql.DB, timeout time.Duration) (*sql.Conn, error) {
	actx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	conn, err := db.Conn(actx)
	if err != nil {
		// The caller giving up is not an outage.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}
	return conn, nil
}

// txExecutor runs everything on one transaction.
type txExecutor struct {
	tx *sql.Tx
}

func (t txExecutor) run(_ context.Context, fn func(DBTX) error) error {
	return fn(t.tx)
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func (s *repoBase) mapInsert(err error) error {
	if err != nil && s.d.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %v", store.ErrAlreadyExists, err)
	}
	return err
}

// repoBase is shared by every repo.
type repoBase struct {
	ex executor
	d  Dialect
}

func (s *repoBase) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var res sql.Result
	err := s.ex.run(ctx, func(q DBTX) error {
		var err error
		res, err = q.ExecContext(ctx, s.d.Rebind(query), args...)
		return err
	})
	return res, err
}

func (s *repoBase) queryRow(ctx context.Context, query string, args []any, dest ...any) error {
	return s.ex.run(ctx, func(q DBTX) error {
		return mapNotFound(q.QueryRowContext(ctx, s.d.Rebind(query), args...).Scan(dest...))
	})
}

func (s *repoBase) query(ctx context.Context, query string, args []any, each func(*sql.Rows) error) error {
	return s.ex.run(ctx, func(q DBTX) error {
		rows, err := q.QueryContext(ctx, s.d.Rebind(query), args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			if err := each(rows); err != nil {
				return err
			}
		}
		return rows.Err()
	})
}

// execOne runs an update that must hit exactly one row.
func (s *repoBase) execOne(ctx context.Context, query string, args ...any) error {
	res, err := s.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func utc(t time.Time) time.Time { return t.UTC() }
