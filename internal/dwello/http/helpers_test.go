package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/dwello/internal/dwello/domain"
	"github.com/aussiebroadwan/dwello/internal/dwello/metrics"
	"github.com/aussiebroadwan/dwello/internal/dwello/service"
	"github.com/aussiebroadwan/dwello/internal/dwello/store"
	"github.com/aussiebroadwan/dwello/internal/dwello/store/drivers/sqlite"
	"github.com/aussiebroadwan/dwello/internal/dwello/store/sqlstore"
	"github.com/aussiebroadwan/dwello/internal/dwello/throttle"
	"github.com/aussiebroadwan/dwello/pkg/cryptox"
	"github.com/aussiebroadwan/dwello/pkg/dwellosdk"
	"github.com/aussiebroadwan/dwello/pkg/httpx"
	"github.com/aussiebroadwan/dwello/pkg/slogx"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router  *Router
	store   store.Store
	metrics *metrics.Metrics
	users   *service.UserService
	hasher  *cryptox.PasswordHasher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:", sqlstore.Options{AcquireTimeout: 2 * time.Second})
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	m := metrics.New()
	h := cryptox.NewPasswordHasher("test-pepper")
	sessions := &service.SessionManager{Store: st, Tokens: h, Metrics: m}
	accounts, err := service.NewAccountService(st, h, sessions, throttle.NewMemory(throttle.DefaultConfig), m)
	require.NoError(t, err)

	r := NewRouter("test", st, nil, m, slogx.Discard())
	r.Resolver = &service.IdentityResolver{Store: st}
	r.AccountService = accounts
	r.UserService = &service.UserService{Store: st, Hasher: h, Metrics: m}
	r.ProfileService = &service.ProfileService{Store: st, Metrics: m}
	r.DealService = &service.DealService{Store: st, Metrics: m}
	r.ApplyRoutes()

	return &testServer{router: r, store: st, metrics: m, users: r.UserService, hasher: h}
}

// seedAdmin creates an admin through the service layer and returns a token.
func (s *testServer) seedAdmin(t *testing.T) string {
	t.Helper()
	digest, err := s.hasher.Hash("secret1")
	require.NoError(t, err)
	now := time.Now().UTC()
	require.NoError(t, s.store.Users().CreateUser(context.Background(), domain.User{
		ID: "01HZZZZZZZZZZZZZZZZZZZZZZA", Name: "Admin", Email: "admin@b.com", PasswordHash: digest,
		Roles: domain.NewRoles(domain.RoleAuthenticated, domain.RoleAdmin), CreatedAt: now, UpdatedAt: now,
	}))

	var auth dwellosdk.AuthResponse
	rec := s.do(t, http.MethodPost, "/v1/accounts/login", "", dwellosdk.LoginRequest{Email: "admin@b.com", Password: "secret1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeBody(t, rec, &auth)
	return auth.Token
}

func (s *testServer) register(t *testing.T, name, email string) dwellosdk.AuthResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/v1/accounts/register", "", dwellosdk.RegisterRequest{Name: name, Email: email, Password: "secret1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var auth dwellosdk.AuthResponse
	decodeBody(t, rec, &auth)
	return auth
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set(httpx.APIKeyHeader, token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dwellosdk.ErrorResponse {
	t.Helper()
	var e dwellosdk.ErrorResponse
	decodeBody(t, rec, &e)
	require.False(t, e.Success)
	return e
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var env dwellosdk.Envelope[T]
	decodeBody(t, rec, &env)
	require.True(t, env.Success)
	return env.Data
}
