package http

import (
	"context"

	"github.com/aussiebroadwan/dwello/internal/dwello/domain"
	"github.com/aussiebroadwan/dwello/internal/dwello/service"
	"github.com/aussiebroadwan/dwello/pkg/httpx"
	"github.com/aussiebroadwan/dwello/pkg/slogx"
)

// IdentityMiddleware resolves the X-API-Key header on every request. It
// never rejects; handlers pass the identity to the service guards.
func IdentityMiddleware(resolver *service.IdentityResolver) httpx.Middleware {
	return httpx.CredentialMiddleware(httpx.APIKeyHeader, func(ctx context.Context, token string) context.Context {
		cu := resolver.Resolve(ctx, token)
		ctx = domain.WithCurrentUser(ctx, cu)
		if u, ok := domain.UserOf(cu); ok {
			ctx = httpx.WithUserID(ctx, u.ID)
			ctx = slogx.With(ctx, "user_id", u.ID)
		}
		return ctx
	})
}
