package sqlstore

import (
	"context"
	"time"

	"github.com/aussiebroadwan/dwello/internal/dwello/domain"
)

type sessionsRepo struct{ repoBase }

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.exec(ctx,
		`INSERT INTO sessions (id, user_id, token_hash, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.UserID, s.TokenHash, s.Active, utc(s.CreatedAt), utc(s.UpdatedAt),
	)
	return r.mapInsert(err)
}

func (r *sessionsRepo) GetSessionByTokenHash(ctx context.Context, tokenHash string) (domain.Session, error) {
	var s domain.Session
	err := r.queryRow(ctx,
		`SELECT id, user_id, token_hash, active, created_at, updated_at
		 FROM sessions WHERE token_hash = $1`,
		[]any{tokenHash},
		&s.ID, &s.UserID, &s.TokenHash, &s.Active, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func (r *sessionsRepo) GetSessionUser(ctx context.Context, tokenHash string) (domain.Session, domain.User, error) {
	var (
		s     domain.Session
		u     domain.User
		roles string
	)
	err := r.queryRow(ctx,
		`SELECT s.id, s.user_id, s.token_hash, s.active, s.created_at, s.updated_at,
		        u.id, u.name, u.email, u.password_hash, u.roles, u.created_at, u.updated_at
		 FROM sessions s JOIN users u ON u.id = s.user_id
		 WHERE s.token_hash = $1`,
		[]any{tokenHash},
		&s.ID, &s.UserID, &s.TokenHash, &s.Active, &s.CreatedAt, &s.UpdatedAt,
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &roles, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.Session{}, domain.User{}, err
	}
	u.Roles = domain.ParseRoles(roles)
	return s, u, nil
}

func (r *sessionsRepo) DeactivateUserSessions(ctx context.Context, userID string, at time.Time) (int64, error) {
	res, err := r.exec(ctx,
		`UPDATE sessions SET active = $1, updated_at = $2 WHERE user_id = $3 AND active = $4`,
		false, utc(at), userID, true,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *sessionsRepo) CountActiveSessions(ctx context.Context) (int64, error) {
	var n int64
	err := r.queryRow(ctx, `SELECT COUNT(*) FROM sessions WHERE active = $1`, []any{true}, &n)
	return n, err
}
