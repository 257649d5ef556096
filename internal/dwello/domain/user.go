package domain

import (
	"strings"
	"time"
)

type User struct {
	ID           string
	Name         string
	Email        string // lower-cased, trimmed
	PasswordHash string // argon2id PHC, or bcrypt for imported accounts
	Roles        Roles
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u User) IsAdmin() bool { return u.Roles.Has(RoleAdmin) }

// NormalizeEmail is applied on every write and every lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
