package sqlstore

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/dwello/internal/dwello/domain"
)

type usersRepo struct{ repoBase }

const userColumns = `id, name, email, password_hash, roles, created_at, updated_at`

func scanUser(sc interface{ Scan(...any) error }) (domain.User, error) {
	var u domain.User
	var roles string
	if err := sc.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &roles, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return domain.User{}, err
	}
	u.Roles = domain.ParseRoles(roles)
	return u, nil
}

func (r *usersRepo) getOne(ctx context.Context, query string, arg string) (domain.User, error) {
	var u domain.User
	err := r.ex.run(ctx, func(q DBTX) error {
		var err error
		u, err = scanUser(q.QueryRowContext(ctx, r.d.Rebind(query), arg))
		return mapNotFound(err)
	})
	return u, err
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, roles, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Roles.String(), utc(u.CreatedAt), utc(u.UpdatedAt),
	)
	return r.mapInsert(err)
}

func (r *usersRepo) ListUsers(ctx context.Context, limit int) ([]domain.User, error) {
	var users []domain.User
	err := r.query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, id LIMIT $1`,
		[]any{limit},
		func(rows *sql.Rows) error {
			u, err := scanUser(rows)
			if err != nil {
				return err
			}
			users = append(users, u)
			return nil
		},
	)
	return users, err
}

func (r *usersRepo) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.queryRow(ctx, `SELECT COUNT(*) FROM users`, nil, &n)
	return n, err
}

func (r *usersRepo) LockUser(ctx context.Context, id string) error {
	var got string
	return r.ex.run(ctx, func(q DBTX) error {
		query := r.d.LockUserQuery()
		if query == "" {
			query = `SELECT id FROM users WHERE id = $1`
		}
		return mapNotFound(q.QueryRowContext(ctx, r.d.Rebind(query), id).Scan(&got))
	})
}
