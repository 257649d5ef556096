package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/dwello/internal/dwello/domain"
	"github.com/aussiebroadwan/dwello/internal/dwello/metrics"
	"github.com/aussiebroadwan/dwello/internal/dwello/store"
	"github.com/aussiebroadwan/dwello/internal/dwello/store/drivers/sqlite"
	"github.com/aussiebroadwan/dwello/internal/dwello/store/sqlstore"
	"github.com/aussiebroadwan/dwello/internal/dwello/throttle"
	"github.com/aussiebroadwan/dwello/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

const testPepper = "test-pepper"

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := sqlite.NewStore(":memory:", sqlstore.Options{AcquireTimeout: 2 * time.Second})
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// countingHasher counts calls to the real hasher.
type countingHasher struct {
	*cryptox.PasswordHasher
	hashes   atomic.Int64
	verifies atomic.Int64
}

func newCountingHasher() *countingHasher {
	return &countingHasher{PasswordHasher: cryptox.NewPasswordHasher(testPepper)}
}

func (h *countingHasher) Hash(pw string) (string, error) {
	h.hashes.Add(1)
	return h.PasswordHasher.Hash(pw)
}

func (h *countingHasher) Verify(pw, digest string) error {
	h.verifies.Add(1)
	return h.PasswordHasher.Verify(pw, digest)
}

// env is a fully wired service graph over one in-memory store.
type env struct {
	store    store.Store
	mutating *countingStore
	hasher   *countingHasher
	metrics  *metrics.Metrics
	sessions *SessionManager
	resolver *IdentityResolver
	accounts *AccountService
	users    *UserService
	profiles *ProfileService
	deals    *DealService
}

func newEnv(t *testing.T, limiter throttle.Limiter) *env {
	t.Helper()

	base := newTestStore(t)
	st := &countingStore{Store: base}
	h := newCountingHasher()
	m := metrics.New()

	sessions := &SessionManager{Store: st, Tokens: h, Metrics: m}
	accounts, err := NewAccountService(st, h, sessions, limiter, m)
	require.NoError(t, err)

	e := &env{
		store:    base,
		mutating: st,
		hasher:   h,
		metrics:  m,
		sessions: sessions,
		resolver: &IdentityResolver{Store: st},
		accounts: accounts,
		users:    &UserService{Store: st, Hasher: h, Metrics: m},
		profiles: &ProfileService{Store: st, Metrics: m},
		deals:    &DealService{Store: st, Metrics: m},
	}
	return e
}

// seedUser writes a user with the given password straight to the store.
func (e *env) seedUser(t *testing.T, name, email, password string, roles ...domain.Role) domain.User {
	t.Helper()
	digest, err := e.hasher.PasswordHasher.Hash(password)
	require.NoError(t, err)
	if len(roles) == 0 {
		roles = domain.DefaultRoles()
	}
	u, err := insertUser(context.Background(), e.store.Users(), NewUserInput{Name: name, Email: email}, digest, domain.NewRoles(roles...))
	require.NoError(t, err)
	return u
}

func (e *env) login(t *testing.T, email, password string) AuthResult {
	t.Helper()
	res, err := e.accounts.Login(context.Background(), email, password)
	require.NoError(t, err)
	return res
}

func (e *env) activeSessions(t *testing.T) int64 {
	t.Helper()
	n, err := e.store.Sessions().CountActiveSessions(context.Background())
	require.NoError(t, err)
	return n
}

// countingStore counts every mutating repository call, inside transactions
// too.
type countingStore struct {
	store.Store
	n atomic.Int64
}

func (c *countingStore) Mutations() int64 { return c.n.Load() }

func (c *countingStore) Users() store.Users       { return countingUsers{c.Store.Users(), &c.n} }
func (c *countingStore) Sessions() store.Sessions { return countingSessions{c.Store.Sessions(), &c.n} }
func (c *countingStore) Profiles() store.Profiles { return countingProfiles{c.Store.Profiles(), &c.n} }
func (c *countingStore) Houses() store.Houses     { return countingHouses{c.Store.Houses(), &c.n} }
func (c *countingStore) Deals() store.Deals       { return countingDeals{c.Store.Deals(), &c.n} }

func (c *countingStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return c.Store.WithTx(ctx, func(tx store.Tx) error {
		return fn(&countingTx{txInner: tx, n: &c.n})
	})
}

// txInner names the embedded field so it does not shadow store.Tx's Tx method.
type txInner = store.Tx

type countingTx struct {
	txInner
	n *atomic.Int64
}

func (c *countingTx) Users() store.Users       { return countingUsers{c.txInner.Users(), c.n} }
func (c *countingTx) Sessions() store.Sessions { return countingSessions{c.txInner.Sessions(), c.n} }
func (c *countingTx) Profiles() store.Profiles { return countingProfiles{c.txInner.Profiles(), c.n} }
func (c *countingTx) Houses() store.Houses     { return countingHouses{c.txInner.Houses(), c.n} }
func (c *countingTx) Deals() store.Deals       { return countingDeals{c.txInner.Deals(), c.n} }

type countingUsers struct {
	store.Users
	n *atomic.Int64
}

func (c countingUsers) CreateUser(ctx context.Context, u domain.User) error {
	c.n.Add(1)
	return c.Users.CreateUser(ctx, u)
}

type countingSessions struct {
	store.Sessions
	n *atomic.Int64
}

func (c countingSessions) CreateSession(ctx context.Context, s domain.Session) error {
	c.n.Add(1)
	return c.Sessions.CreateSession(ctx, s)
}

func (c countingSessions) DeactivateUserSessions(ctx context.Context, userID string, at time.Time) (int64, error) {
	c.n.Add(1)
	return c.Sessions.DeactivateUserSessions(ctx, userID, at)
}

type countingProfiles struct {
	store.Profiles
	n *atomic.Int64
}

func (c countingProfiles) CreateProfile(ctx context.Context, p domain.Profile) error {
	c.n.Add(1)
	return c.Profiles.CreateProfile(ctx, p)
}

func (c countingProfiles) UpdateProfile(ctx context.Context, p domain.Profile) error {
	c.n.Add(1)
	return c.Profiles.UpdateProfile(ctx, p)
}

type countingHouses struct {
	store.Houses
	n *atomic.Int64
}

func (c countingHouses) CreateHouse(ctx context.Context, h domain.House) error {
	c.n.Add(1)
	return c.Houses.CreateHouse(ctx, h)
}

type countingDeals struct {
	store.Deals
	n *atomic.Int64
}

func (c countingDeals) CreateDeal(ctx context.Context, d domain.Deal) error {
	c.n.Add(1)
	return c.Deals.CreateDeal(ctx, d)
}

func (c countingDeals) UpdateDeal(ctx context.Context, d domain.Deal) error {
	c.n.Add(1)
	return c.Deals.UpdateDeal(ctx, d)
}

// brokenLimiter fails every call.
type brokenLimiter struct{}

func (brokenLimiter) Exceeded(context.Context, string) (bool, error) { return false, errBroken }
func (brokenLimiter) RecordFailure(context.Context, string) error    { return errBroken }
func (brokenLimiter) Reset(context.Context, string) error            { return errBroken }

var errBroken = errors.New("limiter down")
