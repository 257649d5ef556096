package domain

import "time"

type House struct {
	ID        string
	Address   string
	Lat       *string
	Lon       *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
