package domain

import "time"

// Profile is the public page of a user. There is at most one per user.
type Profile struct {
	UserID    string
	Title     string
	Intro     string
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
