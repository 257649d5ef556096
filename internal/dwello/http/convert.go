package http

import (
	"time"

	"github.com/aussiebroadwan/dwello/internal/dwello/domain"
	"github.com/aussiebroadwan/dwello/pkg/dwellosdk"
)

func toUser(u domain.User) dwellosdk.User {
	roles := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		roles[i] = string(r)
	}
	return dwellosdk.User{ID: u.ID, Name: u.Name, Email: u.Email, Roles: roles}
}

func toUsers(us []domain.User) []dwellosdk.User {
	out := make([]dwellosdk.User, len(us))
	for i, u := range us {
		out[i] = toUser(u)
	}
	return out
}

func toProfile(p domain.Profile) dwellosdk.Profile {
	return dwellosdk.Profile{
		UserID:    p.UserID,
		Title:     p.Title,
		Intro:     p.Intro,
		Body:      p.Body,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
}

func toDeal(d domain.DealWithHouse) dwellosdk.Deal {
	return dwellosdk.Deal{
		ID:         d.ID,
		Title:      d.Title,
		Status:     string(d.Status),
		AccessCode: d.AccessCode,
		BuyerID:    d.BuyerID,
		SellerID:   d.SellerID,
		HouseID:    d.HouseID,
		Address:    d.Address,
		Lat:        d.Lat,
		Lon:        d.Lon,
		CreatedAt:  d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  d.UpdatedAt.Format(time.RFC3339),
	}
}

func toDeals(ds []domain.DealWithHouse) []dwellosdk.Deal {
	out := make([]dwellosdk.Deal, len(ds))
	for i, d := range ds {
		out[i] = toDeal(d)
	}
	return out
}

func envelope[T any](data T) dwellosdk.Envelope[T] {
	return dwellosdk.Envelope[T]{Success: true, Data: data}
}
