package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/dwello/internal/dwello/domain"
	"github.com/aussiebroadwan/dwello/internal/dwello/metrics"
	"github.com/aussiebroadwan/dwello/internal/dwello/store"
	"github.com/aussiebroadwan/dwello/pkg/cryptox"
	"github.com/aussiebroadwan/dwello/pkg/slogx"
)

type CreateDealInput struct {
	BuyerID string
	Address string
	Lat     *string
	Lon     *string
}

func (in CreateDealInput) validate() error {
	var v ValidationError
	if strings.TrimSpace(in.BuyerID) == "" {
		v.Add("buyer_id", "is required")
	}
	checkLength(&v, "address", strings.TrimSpace(in.Address), 1, HouseAddressMax)
	return v.Err()
}

// UpdateDealInput carries optional changes. Nil fields are left alone.
type UpdateDealInput struct {
	Status   *domain.DealStatus
	SellerID *string
}

// DealService manages deals and the houses they are about.
type DealService struct {
	Store   store.Store
	Metrics *metrics.Metrics
}

func (s *DealService) authz() Authorizer { return Authorizer{Metrics: s.Metrics} }

// CreateDeal inserts the house and a deal for it in one transaction. Admin
// only.
func (s *DealService) CreateDeal(ctx context.Context, cu domain.CurrentUser, in CreateDealInput) (domain.DealWithHouse, error) {
	admin, err := s.authz().Admin(ctx, "create_deal", cu)
	if err != nil {
		return domain.DealWithHouse{}, err
	}
	if err := in.validate(); err != nil {
		return domain.DealWithHouse{}, err
	}

	code, err := cryptox.GenerateAccessCode()
	if err != nil {
		return domain.DealWithHouse{}, err
	}

	buyerID := strings.TrimSpace(in.BuyerID)
	address := strings.TrimSpace(in.Address)
	now := time.Now().UTC()

	var out domain.DealWithHouse
	err = withTx(ctx, s.Store, func(tx store.Tx) error {
		if _, err := tx.Users().GetUserByID(ctx, buyerID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fieldError("buyer_id", "user does not exist")
			}
			return storeErr(err)
		}

		house := domain.House{
			ID:        newID(),
			Address:   address,
			Lat:       in.Lat,
			Lon:       in.Lon,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Houses().CreateHouse(ctx, house); err != nil {
			return storeErr(err)
		}

		deal := domain.Deal{
			ID:         newID(),
			BuyerID:    &buyerID,
			HouseID:    &house.ID,
			AccessCode: code,
			Title:      address,
			Status:     domain.DealInitialized,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := tx.Deals().CreateDeal(ctx, deal); err != nil {
			return storeErr(err)
		}

		out = domain.DealWithHouse{Deal: deal, Address: house.Address, Lat: house.Lat, Lon: house.Lon}
		return nil
	})
	if err != nil {
		return domain.DealWithHouse{}, err
	}

	slogx.FromContext(ctx).Info("deal created",
		slog.String("deal_id", out.ID),
		slog.String("buyer_id", buyerID),
		slog.String("created_by", admin.ID),
	)
	return out, nil
}

// ListDeals returns up to 50 deals, newest first. Admins see every deal,
// optionally filtered by buyer; other users see the deals they are party to.
func (s *DealService) ListDeals(ctx context.Context, cu domain.CurrentUser, buyerID string) ([]domain.DealWithHouse, error) {
	u, err := s.authz().Authenticated(ctx, "list_deals", cu)
	if err != nil {
		return nil, err
	}

	f := domain.MatchIdentity(cu,
		func() store.DealFilter { return store.DealFilter{} },
		func(domain.User) store.DealFilter { return store.DealFilter{BuyerID: buyerID, PartyID: u.ID} },
		func(domain.User) store.DealFilter { return store.DealFilter{BuyerID: buyerID} },
	)
	f.Limit = listDealsLimit

	deals, err := s.Store.Deals().ListDeals(ctx, f)
	return deals, storeErr(err)
}

// GetDeal is open to admins and to the deal's buyer or seller.
func (s *DealService) GetDeal(ctx context.Context, cu domain.CurrentUser, id string) (domain.DealWithHouse, error) {
	if _, err := s.authz().Authenticated(ctx, "get_deal", cu); err != nil {
		return domain.DealWithHouse{}, err
	}

	d, err := s.Store.Deals().GetDeal(ctx, id)
	if err != nil {
		return domain.DealWithHouse{}, storeErr(err)
	}
	if _, err := s.authz().AdminOrOwner(ctx, "get_deal", cu, d.Parties()...); err != nil {
		return domain.DealWithHouse{}, err
	}
	return d, nil
}

// UpdateDeal advances the status and, for admins, assigns the seller. Status
// never moves backwards.
func (s *DealService) UpdateDeal(ctx context.Context, cu domain.CurrentUser, id string, in UpdateDealInput) (domain.DealWithHouse, error) {
	if _, err := s.authz().Authenticated(ctx, "update_deal", cu); err != nil {
		return domain.DealWithHouse{}, err
	}

	var out domain.DealWithHouse
	err := withTx(ctx, s.Store, func(tx store.Tx) error {
		cur, err := tx.Deals().GetDeal(ctx, id)
		if err != nil {
			return storeErr(err)
		}
		if _, err := s.authz().AdminOrOwner(ctx, "update_deal", cu, cur.Parties()...); err != nil {
			return err
		}
		if in.SellerID != nil {
			if _, err := s.authz().Admin(ctx, "assign_seller", cu); err != nil {
				return err
			}
		}

		next := cur.Deal
		var v ValidationError
		if in.Status != nil {
			switch {
			case !in.Status.Valid():
				v.Add("status", "unknown status "+string(*in.Status))
			case !cur.Status.CanMoveTo(*in.Status):
				v.Add("status", "cannot move from "+string(cur.Status)+" to "+string(*in.Status))
			default:
				next.Status = *in.Status
			}
		}
		if in.SellerID != nil {
			seller := strings.TrimSpace(*in.SellerID)
			if _, err := tx.Users().GetUserByID(ctx, seller); err != nil {
				if !errors.Is(err, store.ErrNotFound) {
					return storeErr(err)
				}
				v.Add("seller_id", "user does not exist")
			}
			next.SellerID = &seller
		}
		if err := v.Err(); err != nil {
			return err
		}

		if next.Status == cur.Status && equalPtr(next.SellerID, cur.SellerID) {
			out = cur
			return nil
		}

		next.UpdatedAt = time.Now().UTC()
		if err := tx.Deals().UpdateDeal(ctx, next); err != nil {
			return storeErr(err)
		}
		out = domain.DealWithHouse{Deal: next, Address: cur.Address, Lat: cur.Lat, Lon: cur.Lon}
		return nil
	})
	return out, err
}

// DealsWithHouses is the buyer's dashboard view, up to 10 deals.
func (s *DealService) DealsWithHouses(ctx context.Context, cu domain.CurrentUser) ([]domain.DealWithHouse, error) {
	u, err := s.authz().Authenticated(ctx, "deals_with_houses", cu)
	if err != nil {
		return nil, err
	}
	deals, err := s.Store.Deals().ListDeals(ctx, store.DealFilter{BuyerID: u.ID, Limit: dealsViewLimit})
	return deals, storeErr(err)
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
