package sqlstore

import (
	"context"

	"github.com/aussiebroadwan/dwello/internal/dwello/domain"
)

type profilesRepo struct{ repoBase }

func (r *profilesRepo) CreateProfile(ctx context.Context, p domain.Profile) error {
	_, err := r.exec(ctx,
		`INSERT INTO profiles (user_id, title, intro, body, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		p.UserID, p.Title, p.Intro, p.Body, utc(p.CreatedAt), utc(p.UpdatedAt),
	)
	return r.mapInsert(err)
}

func (r *profilesRepo) UpdateProfile(ctx context.Context, p domain.Profile) error {
	return r.execOne(ctx,
		`UPDATE profiles SET title = $1, intro = $2, body = $3, updated_at = $4 WHERE user_id = $5`,
		p.Title, p.Intro, p.Body, utc(p.UpdatedAt), p.UserID,
	)
}

func (r *profilesRepo) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	var p domain.Profile
	err := r.queryRow(ctx,
		`SELECT user_id, title, intro, body, created_at, updated_at FROM profiles WHERE user_id = $1`,
		[]any{userID},
		&p.UserID, &p.Title, &p.Intro, &p.Body, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}
