package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRoles(t *testing.T) {
	require.Equal(t, Roles{RoleAdmin, RoleAuthenticated}, ParseRoles(" authenticated,ADMIN,,admin "))
	require.Empty(t, ParseRoles(""))
	require.Equal(t, "admin,authenticated", ParseRoles("authenticated,admin").String())

	rs := ParseRoles("authenticated,owner")
	require.False(t, Role("owner").Valid())
	require.True(t, rs.Has(RoleAuthenticated))
}

func TestIdentityFor(t *testing.T) {
	admin := User{ID: "a", Roles: NewRoles(RoleAuthenticated, RoleAdmin)}
	plain := User{ID: "p", Roles: DefaultRoles()}
	bare := User{ID: "b"}

	require.Equal(t, Admin{User: admin}, IdentityFor(admin))
	require.Equal(t, Authenticated{User: plain}, IdentityFor(plain))
	require.Equal(t, Authenticated{User: bare}, IdentityFor(bare))
}

func TestMatchIdentity(t *testing.T) {
	name := func(cu CurrentUser) string {
		return MatchIdentity(cu,
			func() string { return "anon" },
			func(u User) string { return "user:" + u.ID },
			func(u User) string { return "admin:" + u.ID },
		)
	}

	require.Equal(t, "anon", name(Anonymous{}))
	require.Equal(t, "user:1", name(Authenticated{User: User{ID: "1"}}))
	require.Equal(t, "admin:2", name(Admin{User: User{ID: "2"}}))
}

func TestCurrentUserContext(t *testing.T) {
	require.Equal(t, Anonymous{}, CurrentUserFromContext(context.Background()))

	cu := Admin{User: User{ID: "x"}}
	require.Equal(t, cu, CurrentUserFromContext(WithCurrentUser(context.Background(), cu)))

	u, ok := UserOf(cu)
	require.True(t, ok)
	require.Equal(t, "x", u.ID)
	_, ok = UserOf(Anonymous{})
	require.False(t, ok)
}

func TestDealStatusTransitions(t *testing.T) {
	require.True(t, DealInitialized.CanMoveTo(DealInitialized))
	require.True(t, DealInitialized.CanMoveTo(DealMailerSent))
	require.True(t, DealMailerSent.CanMoveTo(DealMailerSent))
	require.False(t, DealMailerSent.CanMoveTo(DealInitialized))
	require.False(t, DealInitialized.CanMoveTo("closed"))
	require.False(t, DealStatus("bogus").Valid())
}

func TestDealParties(t *testing.T) {
	buyer, seller := "b", "s"
	d := Deal{BuyerID: &buyer}
	require.True(t, d.IsParty("b"))
	require.False(t, d.IsParty("s"))
	require.Equal(t, []string{"b"}, d.Parties())

	d.SellerID = &seller
	require.True(t, d.IsParty("s"))
	require.Equal(t, []string{"b", "s"}, d.Parties())
}
