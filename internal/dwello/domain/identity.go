package domain

import "context"

// CurrentUser is the resolved identity of a request. The set of variants is
// closed: Anonymous, Authenticated and Admin.
type CurrentUser interface {
	// Role is the effective role used for authorization.
	Role() Role
	sealed()
}

type Anonymous struct{}

type Authenticated struct{ User User }

type Admin struct{ User User }

func (Anonymous) Role() Role     { return RoleAnonymous }
func (Authenticated) Role() Role { return RoleAuthenticated }
func (Admin) Role() Role         { return RoleAdmin }

func (Anonymous) sealed()     {}
func (Authenticated) sealed() {}
func (Admin) sealed()         {}

// IdentityFor classifies a loaded user.
func IdentityFor(u User) CurrentUser {
	if u.IsAdmin() {
		return Admin{User: u}
	}
	return Authenticated{User: u}
}

// UserOf returns the user behind cu, if any.
func UserOf(cu CurrentUser) (User, bool) {
	switch v := cu.(type) {
	case Authenticated:
		return v.User, true
	case Admin:
		return v.User, true
	}
	return User{}, false
}

// MatchIdentity calls the branch for cu's variant. Every branch must be given,
// so adding a variant breaks every call site at compile time.
func MatchIdentity[T any](cu CurrentUser, anonymous func() T, authenticated func(User) T, admin func(User) T) T {
	switch v := cu.(type) {
	case Admin:
		return admin(v.User)
	case Authenticated:
		return authenticated(v.User)
	default:
		return anonymous()
	}
}

type identityKey struct{}

func WithCurrentUser(ctx context.Context, cu CurrentUser) context.Context {
	return context.WithValue(ctx, identityKey{}, cu)
}

// CurrentUserFromContext returns Anonymous when nothing was resolved.
func CurrentUserFromContext(ctx context.Context) CurrentUser {
	if cu, ok := ctx.Value(identityKey{}).(CurrentUser); ok && cu != nil {
		return cu
	}
	return Anonymous{}
}
