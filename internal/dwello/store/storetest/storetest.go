// Package storetest holds the conformance tests every store driver must pass.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/dwello/internal/dwello/domain"
	"github.com/aussiebroadwan/dwello/internal/dwello/store"
	"github.com/aussiebroadwan/dwello/pkg/idx"
	"github.com/stretchr/testify/require"
)

// Factory returns a migrated, empty store. It registers its own cleanup.
type Factory func(t *testing.T) store.Store

// Run executes the suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("Sessions", func(t *testing.T) { testSessions(t, newStore(t)) })
	t.Run("SessionUser", func(t *testing.T) { testSessionUser(t, newStore(t)) })
	t.Run("SessionRotationInTx", func(t *testing.T) { testRotation(t, newStore(t)) })
	t.Run("Profiles", func(t *testing.T) { testProfiles(t, newStore(t)) })
	t.Run("DealsAndHouses", func(t *testing.T) { testDeals(t, newStore(t)) })
	t.Run("TxRollback", func(t *testing.T) { testRollback(t, newStore(t)) })
}

// NewUser returns a user with a fresh id and the given email.
func NewUser(email string, roles ...domain.Role) domain.User {
	now := time.Now().UTC().Truncate(time.Millisecond)
	if len(roles) == 0 {
		roles = domain.DefaultRoles()
	}
	return domain.User{
		ID:           idx.New().String(),
		Name:         "Test " + email,
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		Roles:        domain.NewRoles(roles...),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func newSession(userID, hash string) domain.Session {
	now := time.Now().UTC()
	return domain.Session{
		ID:        idx.New().String(),
		UserID:    userID,
		TokenHash: hash,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()

	alice := NewUser("alice@example.com", domain.RoleAuthenticated, domain.RoleAdmin)
	require.NoError(t, s.Users().CreateUser(ctx, alice))

	got, err := s.Users().GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, alice.ID, got.ID)
	require.Equal(t, alice.Name, got.Name)
	require.Equal(t, alice.PasswordHash, got.PasswordHash)
	require.Equal(t, domain.Roles{domain.RoleAdmin, domain.RoleAuthenticated}, got.Roles)
	require.WithinDuration(t, alice.CreatedAt, got.CreatedAt, time.Second)

	byID, err := s.Users().GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, got.Email, byID.Email)

	_, err = s.Users().GetUserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Users().GetUserByID(ctx, idx.New().String())
	require.ErrorIs(t, err, store.ErrNotFound)

	dup := NewUser("alice@example.com")
	require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)

	bob := NewUser("bob@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, bob))

	n, err := s.Users().CountUsers(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	list, err := s.Users().ListUsers(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)

	list, err = s.Users().ListUsers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, s.Users().LockUser(ctx, bob.ID))
	require.ErrorIs(t, s.Users().LockUser(ctx, idx.New().String()), store.ErrNotFound)
}

func testSessions(t *testing.T, s store.Store) {
	ctx := context.Background()

	u := NewUser("sess@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	first := newSession(u.ID, "hash-1")
	require.NoError(t, s.Sessions().CreateSession(ctx, first))

	got, err := s.Sessions().GetSessionByTokenHash(ctx, "hash-1")
	require.NoError(t, err)
	require.Equal(t, first.ID, got.ID)
	require.True(t, got.Active)

	_, err = s.Sessions().GetSessionByTokenHash(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	// A second active session for the same user is refused by the schema.
	err = s.Sessions().CreateSession(ctx, newSession(u.ID, "hash-2"))
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	n, err := s.Sessions().DeactivateUserSessions(ctx, u.ID, time.Now())
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	got, err = s.Sessions().GetSessionByTokenHash(ctx, "hash-1")
	require.NoError(t, err)
	require.False(t, got.Active)

	n, err = s.Sessions().DeactivateUserSessions(ctx, u.ID, time.Now())
	require.NoError(t, err)
	require.Zero(t, n)

	require.NoError(t, s.Sessions().CreateSession(ctx, newSession(u.ID, "hash-2")))
	active, err := s.Sessions().CountActiveSessions(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, active)

	// Token hashes are unique across users too.
	other := NewUser("other@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, other))
	require.ErrorIs(t, s.Sessions().CreateSession(ctx, newSession(other.ID, "hash-2")), store.ErrAlreadyExists)
}

func testSessionUser(t *testing.T, s store.Store) {
	ctx := context.Background()

	u := NewUser("joined@example.com", domain.RoleAuthenticated, domain.RoleAdmin)
	require.NoError(t, s.Users().CreateUser(ctx, u))
	sess := newSession(u.ID, "joined-hash")
	require.NoError(t, s.Sessions().CreateSession(ctx, sess))

	gotSess, gotUser, err := s.Sessions().GetSessionUser(ctx, "joined-hash")
	require.NoError(t, err)
	require.Equal(t, sess.ID, gotSess.ID)
	require.True(t, gotSess.Active)
	require.Equal(t, u.ID, gotUser.ID)
	require.Equal(t, u.Email, gotUser.Email)
	require.Equal(t, u.Roles, gotUser.Roles)

	_, err = s.Sessions().DeactivateUserSessions(ctx, u.ID, time.Now())
	require.NoError(t, err)
	gotSess, _, err = s.Sessions().GetSessionUser(ctx, "joined-hash")
	require.NoError(t, err)
	require.False(t, gotSess.Active)

	_, _, err = s.Sessions().GetSessionUser(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testRotation(t *testing.T, s store.Store) {
	ctx := context.Background()

	u := NewUser("rotate@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))
	require.NoError(t, s.Sessions().CreateSession(ctx, newSession(u.ID, "old")))

	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().LockUser(ctx, u.ID); err != nil {
			return err
		}
		if _, err := tx.Sessions().DeactivateUserSessions(ctx, u.ID, time.Now()); err != nil {
			return err
		}
		return tx.Sessions().CreateSession(ctx, newSession(u.ID, "new"))
	})
	require.NoError(t, err)

	old, err := s.Sessions().GetSessionByTokenHash(ctx, "old")
	require.NoError(t, err)
	require.False(t, old.Active)

	cur, err := s.Sessions().GetSessionByTokenHash(ctx, "new")
	require.NoError(t, err)
	require.True(t, cur.Active)

	// Nested transactions are refused.
	err = s.WithTx(ctx, func(tx store.Tx) error {
		return tx.WithTx(ctx, func(store.Tx) error { return nil })
	})
	require.Error(t, err)
}

func testProfiles(t *testing.T, s store.Store) {
	ctx := context.Background()

	u := NewUser("profile@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	now := time.Now().UTC()
	p := domain.Profile{UserID: u.ID, Title: "Agent", Intro: "hi", Body: "long", CreatedAt: now, UpdatedAt: now}

	require.ErrorIs(t, s.Profiles().UpdateProfile(ctx, p), store.ErrNotFound)
	_, err := s.Profiles().GetProfile(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Profiles().CreateProfile(ctx, p))
	require.ErrorIs(t, s.Profiles().CreateProfile(ctx, p), store.ErrAlreadyExists)

	p.Title = "Senior agent"
	p.UpdatedAt = now.Add(time.Minute)
	require.NoError(t, s.Profiles().UpdateProfile(ctx, p))

	got, err := s.Profiles().GetProfile(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "Senior agent", got.Title)
	require.Equal(t, "hi", got.Intro)
	require.Equal(t, "long", got.Body)
}

func testDeals(t *testing.T, s store.Store) {
	ctx := context.Background()
	now := time.Now().UTC()

	buyer := NewUser("buyer@example.com")
	seller := NewUser("seller@example.com")
	require.NoError(t, s.Users().CreateUser(ctx, buyer))
	require.NoError(t, s.Users().CreateUser(ctx, seller))

	lat := "-33.86"
	house := domain.House{ID: idx.New().String(), Address: "1 George St", Lat: &lat, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.Houses().CreateHouse(ctx, house))

	gotHouse, err := s.Houses().GetHouse(ctx, house.ID)
	require.NoError(t, err)
	require.Equal(t, "1 George St", gotHouse.Address)
	require.Equal(t, &lat, gotHouse.Lat)
	require.Nil(t, gotHouse.Lon)

	deal := domain.Deal{
		ID:         idx.New().String(),
		BuyerID:    &buyer.ID,
		HouseID:    &house.ID,
		AccessCode: "ABCD2345",
		Title:      house.Address,
		Status:     domain.DealInitialized,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, s.Deals().CreateDeal(ctx, deal))

	// Second deal, no house, newer.
	bare := domain.Deal{
		ID:         idx.New().String(),
		BuyerID:    &seller.ID,
		AccessCode: "ZZZZ2345",
		Title:      "bare",
		Status:     domain.DealInitialized,
		CreatedAt:  now.Add(time.Second),
		UpdatedAt:  now.Add(time.Second),
	}
	require.NoError(t, s.Deals().CreateDeal(ctx, bare))

	got, err := s.Deals().GetDeal(ctx, deal.ID)
	require.NoError(t, err)
	require.Equal(t, "1 George St", got.Address)
	require.Equal(t, &lat, got.Lat)
	require.Equal(t, buyer.ID, *got.BuyerID)
	require.Nil(t, got.SellerID)
	require.Equal(t, domain.DealInitialized, got.Status)

	gotBare, err := s.Deals().GetDeal(ctx, bare.ID)
	require.NoError(t, err)
	require.Empty(t, gotBare.Address)
	require.Nil(t, gotBare.HouseID)

	_, err = s.Deals().GetDeal(ctx, idx.New().String())
	require.ErrorIs(t, err, store.ErrNotFound)

	all, err := s.Deals().ListDeals(ctx, store.DealFilter{Limit: 50})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, bare.ID, all[0].ID, "newest first")

	mine, err := s.Deals().ListDeals(ctx, store.DealFilter{BuyerID: buyer.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, deal.ID, mine[0].ID)

	deal.Status = domain.DealMailerSent
	deal.SellerID = &seller.ID
	deal.UpdatedAt = now.Add(time.Minute)
	require.NoError(t, s.Deals().UpdateDeal(ctx, deal))

	// The seller of the first deal is also the buyer of the second.
	party, err := s.Deals().ListDeals(ctx, store.DealFilter{PartyID: seller.ID})
	require.NoError(t, err)
	require.Len(t, party, 2)

	got, err = s.Deals().GetDeal(ctx, deal.ID)
	require.NoError(t, err)
	require.Equal(t, domain.DealMailerSent, got.Status)
	require.Equal(t, seller.ID, *got.SellerID)

	missing := deal
	missing.ID = idx.New().String()
	require.ErrorIs(t, s.Deals().UpdateDeal(ctx, missing), store.ErrNotFound)
}

func testRollback(t *testing.T, s store.Store) {
	ctx := context.Background()
	boom := errors.New("boom")

	u := NewUser("rollback@example.com")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Users().GetUserByID(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Ping(ctx))
}
