package dwello_test

import (
	"testing"

	"github.com/aussiebroadwan/dwello/pkg/dwellosdk"
	"github.com/stretchr/testify/require"
)

// TestSessionRotation verifies a new login invalidates the previous token.
func TestSessionRotation(t *testing.T) {
	client := setupContainer(t)
	ctx := t.Context()

	first := registerUser(t, client, "Alice", "alice@dwello.test")

	me, err := first.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "authenticated", me.Role)

	second, err := client.Login(ctx, "ALICE@dwello.test", "secret1")
	require.NoError(t, err)
	require.NotEqual(t, first.Token(), second.Token())

	// The old token now resolves to an anonymous caller.
	_, err = first.Me(ctx)
	assertAPIError(t, err, dwellosdk.ErrAccessDenied)

	me, err = second.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "alice@dwello.test", me.User.Email)
}

func TestLoginErrors(t *testing.T) {
	client := setupContainer(t)
	ctx := t.Context()

	_, err := client.Login(ctx, "nobody@dwello.test", "secret1")
	assertAPIError(t, err, dwellosdk.ErrInvalidCredentials)
	assertField(t, err, "email")

	_, err = client.Login(ctx, adminEmail, "wrong-password")
	assertAPIError(t, err, dwellosdk.ErrInvalidCredentials)
	assertField(t, err, "password")
}

func TestRegisterErrors(t *testing.T) {
	client := setupContainer(t)
	ctx := t.Context()

	_, err := client.Register(ctx, "Admin Again", adminEmail, "secret1")
	assertAPIError(t, err, dwellosdk.ErrEmailTaken)

	_, err = client.Register(ctx, "", "not-an-email", "123")
	assertAPIError(t, err, dwellosdk.ErrValidation)
	assertField(t, err, "name")
	assertField(t, err, "email")
	assertField(t, err, "password")
}

// TestAnonymousAccess verifies unauthenticated callers are denied.
func TestAnonymousAccess(t *testing.T) {
	client := setupContainer(t)
	anon := client.NewSession("", dwellosdk.User{})

	_, err := anon.ListUsers(t.Context())
	assertAPIError(t, err, dwellosdk.ErrAccessDenied)

	_, err = anon.DealsWithHouses(t.Context())
	assertAPIError(t, err, dwellosdk.ErrAccessDenied)

	_, err = anon.Me(t.Context())
	assertAPIError(t, err, dwellosdk.ErrAccessDenied)
}
