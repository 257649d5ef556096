package domain

import "time"

type DealStatus string

const (
	DealInitialized DealStatus = "initialized"
	DealMailerSent  DealStatus = "mailer_sent"
)

var dealStatusOrder = map[DealStatus]int{
	DealInitialized: 0,
	DealMailerSent:  1,
}

func (s DealStatus) Valid() bool {
	_, ok := dealStatusOrder[s]
	return ok
}

// CanMoveTo reports whether next is s or a later status.
func (s DealStatus) CanMoveTo(next DealStatus) bool {
	from, ok := dealStatusOrder[s]
	if !ok {
		return false
	}
	to, ok := dealStatusOrder[next]
	return ok && to >= from
}

type Deal struct {
	ID         string
	BuyerID    *string
	SellerID   *string
	HouseID    *string
	AccessCode string
	Title      string
	Status     DealStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsParty reports whether userID is the buyer or the seller.
func (d Deal) IsParty(userID string) bool {
	return (d.BuyerID != nil && *d.BuyerID == userID) ||
		(d.SellerID != nil && *d.SellerID == userID)
}

// Parties returns the ids of the buyer and seller that are set.
func (d Deal) Parties() []string {
	var ids []string
	if d.BuyerID != nil {
		ids = append(ids, *d.BuyerID)
	}
	if d.SellerID != nil {
		ids = append(ids, *d.SellerID)
	}
	return ids
}

// DealWithHouse is a deal joined with its house. House fields are empty when
// the deal has no house.
type DealWithHouse struct {
	Deal
	Address string
	Lat     *string
	Lon     *string
}
