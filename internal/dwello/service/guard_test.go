package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/dwello/internal/dwello/domain"
	"github.com/aussiebroadwan/dwello/internal/dwello/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

var (
	guardUser  = domain.User{ID: "u1", Roles: domain.DefaultRoles()}
	guardAdmin = domain.User{ID: "a1", Roles: domain.NewRoles(domain.RoleAuthenticated, domain.RoleAdmin)}
)

func TestGuards(t *testing.T) {
	anon := domain.Anonymous{}
	user := domain.Authenticated{User: guardUser}
	admin := domain.Admin{User: guardAdmin}

	tests := []struct {
		name  string
		guard func(domain.CurrentUser) (domain.User, error)
		allow map[domain.Role]bool
	}{
		{"admin", RequireAdmin, map[domain.Role]bool{domain.RoleAdmin: true}},
		{"authenticated", RequireAuthenticated, map[domain.Role]bool{domain.RoleAdmin: true, domain.RoleAuthenticated: true}},
		{"owner u1", func(cu domain.CurrentUser) (domain.User, error) { return RequireAdminOrOwner(cu, "u1") }, map[domain.Role]bool{domain.RoleAdmin: true, domain.RoleAuthenticated: true}},
		{"owner other", func(cu domain.CurrentUser) (domain.User, error) { return RequireAdminOrOwner(cu, "u2") }, map[domain.Role]bool{domain.RoleAdmin: true}},
		{"owner none", func(cu domain.CurrentUser) (domain.User, error) { return RequireAdminOrOwner(cu) }, map[domain.Role]bool{domain.RoleAdmin: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, cu := range []domain.CurrentUser{anon, user, admin} {
				u, err := tt.guard(cu)
				if tt.allow[cu.Role()] {
					require.NoError(t, err, cu.Role())
					want, _ := domain.UserOf(cu)
					require.Equal(t, want.ID, u.ID)
				} else {
					require.ErrorIs(t, err, ErrAccessDenied, cu.Role())
					require.Empty(t, u.ID)
				}
			}
		})
	}
}

func TestAuthorizer_CountsDenials(t *testing.T) {
	m := metrics.New()
	a := Authorizer{Metrics: m}
	ctx := context.Background()

	_, err := a.Admin(ctx, "list_users", domain.Authenticated{User: guardUser})
	require.ErrorIs(t, err, ErrAccessDenied)
	_, err = a.Admin(ctx, "list_users", domain.Anonymous{})
	require.ErrorIs(t, err, ErrAccessDenied)
	_, err = a.Admin(ctx, "list_users", domain.Admin{User: guardAdmin})
	require.NoError(t, err)

	require.InDelta(t, 2, testutil.ToFloat64(m.AccessDenied.WithLabelValues("list_users")), 0)
}

func TestAuthorizer_NilMetrics(t *testing.T) {
	_, err := Authorizer{}.Authenticated(context.Background(), "me", domain.Anonymous{})
	require.ErrorIs(t, err, ErrAccessDenied)
}

// Every admin-only operation is rejected before any write for callers that
// are not admins.
func TestAdminOperations_DenyWithoutWrites(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	buyer := e.seedUser(t, "Buyer", "buyer@b.com", "secret1")
	start := e.mutating.Mutations()

	ops := map[string]func(domain.CurrentUser) error{
		"list_users": func(cu domain.CurrentUser) error {
			_, err := e.users.ListUsers(ctx, cu)
			return err
		},
		"create_user": func(cu domain.CurrentUser) error {
			_, err := e.users.CreateUser(ctx, cu, NewUserInput{Name: "X", Email: "x@b.com", Password: "secret1"})
			return err
		},
		"create_deal": func(cu domain.CurrentUser) error {
			_, err := e.deals.CreateDeal(ctx, cu, CreateDealInput{BuyerID: buyer.ID, Address: "1 Main St"})
			return err
		},
	}

	for name, op := range ops {
		for _, cu := range []domain.CurrentUser{domain.Anonymous{}, domain.Authenticated{User: buyer}} {
			t.Run(name+"/"+string(cu.Role()), func(t *testing.T) {
				require.ErrorIs(t, op(cu), ErrAccessDenied)
			})
		}
	}

	require.Equal(t, start, e.mutating.Mutations())
	n, err := e.store.Users().CountUsers(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}
