package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/dwello/internal/dwello/domain"
	"github.com/aussiebroadwan/dwello/internal/dwello/store"
	"github.com/aussiebroadwan/dwello/pkg/cryptox"
	"github.com/aussiebroadwan/dwello/pkg/slogx"
)

// IdentityResolver maps a session token to the caller's identity.
type IdentityResolver struct {
	Store store.Store
}

// Resolve never fails. Anything short of an active session whose user still
// exists resolves to Anonymous, and the guards decide what that may do.
func (r *IdentityResolver) Resolve(ctx context.Context, token string) domain.CurrentUser {
	if token == "" {
		return domain.Anonymous{}
	}
	l := slogx.FromContext(ctx)

	// One lookup, so one pooled connection per request.
	sess, u, err := r.Store.Sessions().GetSessionUser(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			l.Error("session lookup failed", slog.Any("error", err))
		}
		return domain.Anonymous{}
	}
	if !sess.Active {
		l.Debug("inactive session presented", slog.String("session_id", sess.ID))
		return domain.Anonymous{}
	}

	return domain.IdentityFor(u)
}
