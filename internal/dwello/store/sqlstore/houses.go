package sqlstore

import (
	"context"

	"github.com/aussiebroadwan/dwello/internal/dwello/domain"
)

type housesRepo struct{ repoBase }

func (r *housesRepo) CreateHouse(ctx context.Context, h domain.House) error {
	_, err := r.exec(ctx,
		`INSERT INTO houses (id, address, lat, lon, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		h.ID, h.Address, h.Lat, h.Lon, utc(h.CreatedAt), utc(h.UpdatedAt),
	)
	return r.mapInsert(err)
}

func (r *housesRepo) GetHouse(ctx context.Context, id string) (domain.House, error) {
	var h domain.House
	err := r.queryRow(ctx,
		`SELECT id, address, lat, lon, created_at, updated_at FROM houses WHERE id = $1`,
		[]any{id},
		&h.ID, &h.Address, &h.Lat, &h.Lon, &h.CreatedAt, &h.UpdatedAt,
	)
	return h, err
}
