package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/dwello/internal/dwello/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrUnavailable means no connection could be obtained in time.
	ErrUnavailable = errors.New("store: unavailable")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Sub-repositories are returned from methods so a Tx can hand
// out the same repos bound to the transaction.
type Store interface {
	Users() Users
	Sessions() Sessions
	Profiles() Profiles
	Houses() Houses
	Deals() Deals

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. Nested transactions are not supported.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail expects an already normalised email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// ListUsers returns up to limit users, oldest first.
	ListUsers(ctx context.Context, limit int) ([]domain.User, error)

	CountUsers(ctx context.Context) (int64, error)

	// LockUser holds a write lock on the user row until the transaction ends.
	// Outside a transaction it only checks that the user exists.
	LockUser(ctx context.Context, id string) error
}

type Sessions interface {
	CreateSession(ctx context.Context, s domain.Session) error

	GetSessionByTokenHash(ctx context.Context, tokenHash string) (domain.Session, error)

	// GetSessionUser loads the session and its user in one query. Inactive
	// sessions are returned too; the caller decides what they mean.
	GetSessionUser(ctx context.Context, tokenHash string) (domain.Session, domain.User, error)

	// DeactivateUserSessions flips every active session of the user to
	// inactive and returns how many were changed.
	DeactivateUserSessions(ctx context.Context, userID string, at time.Time) (int64, error)

	CountActiveSessions(ctx context.Context) (int64, error)
}

type Profiles interface {
	// CreateProfile returns ErrAlreadyExists when the user has one.
	CreateProfile(ctx context.Context, p domain.Profile) error

	// UpdateProfile replaces title, intro and body. ErrNotFound when absent.
	UpdateProfile(ctx context.Context, p domain.Profile) error

	GetProfile(ctx context.Context, userID string) (domain.Profile, error)
}

type Houses interface {
	CreateHouse(ctx context.Context, h domain.House) error
	GetHouse(ctx context.Context, id string) (domain.House, error)
}

// DealFilter narrows ListDeals. Empty fields do not filter.
type DealFilter struct {
	BuyerID string
	// PartyID matches deals where the user is buyer or seller.
	PartyID string
	Limit   int
}

type Deals interface {
	CreateDeal(ctx context.Context, d domain.Deal) error

	GetDeal(ctx context.Context, id string) (domain.DealWithHouse, error)

	// ListDeals returns deals newest first.
	ListDeals(ctx context.Context, f DealFilter) ([]domain.DealWithHouse, error)

	// UpdateDeal writes status and seller_id. ErrNotFound when absent.
	UpdateDeal(ctx context.Context, d domain.Deal) error
}
