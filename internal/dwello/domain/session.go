package domain

import "time"

// Session is a server-side login record. The bearer token itself is never
// stored, only its fingerprint.
type Session struct {
	ID        string
	UserID    string
	TokenHash string // base64url SHA-256 of the token
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
