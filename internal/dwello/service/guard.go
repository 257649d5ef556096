package service

import (
	"context"
	"errors"
	"slices"

	"github.com/aussiebroadwan/dwello/internal/dwello/domain"
	"github.com/aussiebroadwan/dwello/internal/dwello/metrics"
	"github.com/aussiebroadwan/dwello/pkg/slogx"
)

// RequireAdmin allows only Admin.
func RequireAdmin(cu domain.CurrentUser) (domain.User, error) {
	return domain.MatchIdentity(cu,
		func() guardResult { return denied() },
		func(domain.User) guardResult { return denied() },
		func(u domain.User) guardResult { return allowed(u) },
	).unpack()
}

// RequireAuthenticated allows any identity that is not Anonymous.
func RequireAuthenticated(cu domain.CurrentUser) (domain.User, error) {
	return domain.MatchIdentity(cu,
		func() guardResult { return denied() },
		func(u domain.User) guardResult { return allowed(u) },
		func(u domain.User) guardResult { return allowed(u) },
	).unpack()
}

// RequireAdminOrOwner allows Admin, or an authenticated identity whose id is
// one of ownerIDs.
func RequireAdminOrOwner(cu domain.CurrentUser, ownerIDs ...string) (domain.User, error) {
	return domain.MatchIdentity(cu,
		func() guardResult { return denied() },
		func(u domain.User) guardResult {
			if slices.Contains(ownerIDs, u.ID) {
				return allowed(u)
			}
			return denied()
		},
		func(u domain.User) guardResult { return allowed(u) },
	).unpack()
}

type guardResult struct {
	user domain.User
	err  error
}

func allowed(u domain.User) guardResult { return guardResult{user: u} }
func denied() guardResult               { return guardResult{err: ErrAccessDenied} }

func (g guardResult) unpack() (domain.User, error) { return g.user, g.err }

// Authorizer wraps the guards with denial logging and metrics. Operation
// names label the dwello_access_denied_total counter.
type Authorizer struct {
	Metrics *metrics.Metrics
}

func (a Authorizer) Admin(ctx context.Context, operation string, cu domain.CurrentUser) (domain.User, error) {
	return a.record(ctx, operation, cu)(RequireAdmin(cu))
}

func (a Authorizer) Authenticated(ctx context.Context, operation string, cu domain.CurrentUser) (domain.User, error) {
	return a.record(ctx, operation, cu)(RequireAuthenticated(cu))
}

func (a Authorizer) AdminOrOwner(ctx context.Context, operation string, cu domain.CurrentUser, ownerIDs ...string) (domain.User, error) {
	return a.record(ctx, operation, cu)(RequireAdminOrOwner(cu, ownerIDs...))
}

func (a Authorizer) record(ctx context.Context, operation string, cu domain.CurrentUser) func(domain.User, error) (domain.User, error) {
	return func(u domain.User, err error) (domain.User, error) {
		if errors.Is(err, ErrAccessDenied) {
			a.Metrics.Denied(operation)
			slogx.FromContext(ctx).Info("access denied",
				"operation", operation,
				"role", string(cu.Role()),
			)
		}
		return u, err
	}
}
