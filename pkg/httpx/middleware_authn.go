package httpx

import (
	"context"
	"net/http"
	"strings"
)

// APIKeyHeader carries the opaque session token.
const APIKeyHeader = "X-API-Key"

// CredentialResolver turns the raw credential into a request context. It is
// called for every request, including ones without the header (token == "").
type CredentialResolver func(ctx context.Context, token string) context.Context

// CredentialMiddleware reads header and hands its trimmed value to resolve.
// It never rejects a request itself; deciding what an anonymous caller may do
// is left to the handlers.
func CredentialMiddleware(header string, resolve CredentialResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(r.Header.Get(header))
			next.ServeHTTP(w, r.WithContext(resolve(r.Context(), token)))
		})
	}
}
