package sqlstore

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/dwello/internal/dwello/domain"
	"github.com/aussiebroadwan/dwello/internal/dwello/store"
)

type dealsRepo struct{ repoBase }

const dealWithHouseSelect = `
SELECT d.id, d.buyer_id, d.seller_id, d.house_id, d.access_code, d.title, d.status,
       d.created_at, d.updated_at, COALESCE(h.address, ''), h.lat, h.lon
FROM deals d
LEFT JOIN houses h ON h.id = d.house_id`

func scanDealWithHouse(sc interface{ Scan(...any) error }) (domain.DealWithHouse, error) {
	var v domain.DealWithHouse
	var status string
	err := sc.Scan(
		&v.ID, &v.BuyerID, &v.SellerID, &v.HouseID, &v.AccessCode, &v.Title, &status,
		&v.CreatedAt, &v.UpdatedAt, &v.Address, &v.Lat, &v.Lon,
	)
	v.Status = domain.DealStatus(status)
	return v, err
}

func (r *dealsRepo) CreateDeal(ctx context.Context, d domain.Deal) error {
	_, err := r.exec(ctx,
		`INSERT INTO deals (id, buyer_id, seller_id, house_id, access_code, title, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		d.ID, d.BuyerID, d.SellerID, d.HouseID, d.AccessCode, d.Title, string(d.Status),
		utc(d.CreatedAt), utc(d.UpdatedAt),
	)
	return r.mapInsert(err)
}

func (r *dealsRepo) GetDeal(ctx context.Context, id string) (domain.DealWithHouse, error) {
	var v domain.DealWithHouse
	err := r.ex.run(ctx, func(q DBTX) error {
		var err error
		v, err = scanDealWithHouse(q.QueryRowContext(ctx, r.d.Rebind(dealWithHouseSelect+` WHERE d.id = $1`), id))
		return mapNotFound(err)
	})
	return v, err
}

func (r *dealsRepo) ListDeals(ctx context.Context, f store.DealFilter) ([]domain.DealWithHouse, error) {
	var (
		where []string
		args  []any
	)
	next := func() string { return "$" + strconv.Itoa(len(args)) }

	if f.BuyerID != "" {
		args = append(args, f.BuyerID)
		where = append(where, "d.buyer_id = "+next())
	}
	if f.PartyID != "" {
		args = append(args, f.PartyID)
		p := next()
		where = append(where, "(d.buyer_id = "+p+" OR d.seller_id = "+p+")")
	}

	query := dealWithHouseSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY d.created_at DESC, d.id DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += " LIMIT " + next()
	}

	var out []domain.DealWithHouse
	err := r.query(ctx, query, args, func(rows *sql.Rows) error {
		v, err := scanDealWithHouse(rows)
		if err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	return out, err
}

func (r *dealsRepo) UpdateDeal(ctx context.Context, d domain.Deal) error {
	return r.execOne(ctx,
		`UPDATE deals SET status = $1, seller_id = $2, updated_at = $3 WHERE id = $4`,
		string(d.Status), d.SellerID, utc(d.UpdatedAt), d.ID,
	)
}
