package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/dwello/internal/dwello/metrics"
	"github.com/aussiebroadwan/dwello/internal/dwello/service"
	"github.com/aussiebroadwan/dwello/pkg/httpx"
	"github.com/aussiebroadwan/dwello/pkg/slogx"

	_ "github.com/aussiebroadwan/dwello/api/dwello" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux     *http.ServeMux
	handler http.Handler

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	db       Pinger
	throttle Pinger // nil unless the Redis throttle is configured
	metrics  *metrics.Metrics
	cors     httpx.CORSConfig

	Resolver       *service.IdentityResolver
	AccountService *service.AccountService
	UserService    *service.UserService
	ProfileService *service.ProfileService
	DealService    *service.DealService
}

// NewRouter builds an empty router. Set the services, then call ApplyRoutes.
func NewRouter(buildVersion string, db, throttle Pinger, m *metrics.Metrics, logger *slog.Logger) *Router {
	return &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		db:           db,
		throttle:     throttle,
		metrics:      m,
		cors:         httpx.DefaultCORS,
	}
}

func (r *Router) ApplyRoutes() {
	r.registerAccounts()
	r.registerUsers()
	r.registerProfiles()
	r.registerDeals()
	r.registerSystem()

	r.Mux.Handle("GET /swagger/", httpSwagger.Handler())

	// CORS answers preflights before anything else runs. Identity is
	// resolved after the logger is attached so lookups log with req_id.
	r.handler = httpx.Chain(r.Mux,
		httpx.CORS(r.cors),
		slogx.HTTPMiddleware(r.logger),
		IdentityMiddleware(r.Resolver),
	)
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title						Dwello API
//	@version					0.1.0
//	@description				Backend for the Dwello real-estate deal platform. Sessions are opaque tokens issued by login or registration.
//	@description				Each user holds at most one active session; logging in again invalidates the previous token.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/dwello
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						X-API-Key
//	@description				Session token returned by login or registration.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

// handle registers h at pattern with route-level middleware and records
// request metrics under the pattern.
func (r *Router) handle(pattern string, h http.HandlerFunc, mws ...httpx.Middleware) {
	r.Mux.Handle(pattern, r.metrics.Instrument(pattern, httpx.Chain(h, mws...)))
}

func (r *Router) registerAccounts() {
	h := &AccountsHandler{AccountService: r.AccountService}

	// Credential endpoints - strict rate limit by IP
	r.handle("POST /v1/accounts/login", h.HandleLogin, httpx.RateLimitByIP(httpx.StrictLimit))
	r.handle("POST /v1/accounts/register", h.HandleRegister, httpx.RateLimitByIP(httpx.StrictLimit))
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}
	limit := httpx.RateLimitByUser(httpx.ModerateLimit)

	r.handle("GET /v1/me", h.HandleMe, limit)
	r.handle("GET /v1/users", h.HandleList, limit)
	r.handle("POST /v1/users", h.HandleCreate, limit)
	r.handle("GET /v1/users/{id}", h.HandleGet, limit)
}

func (r *Router) registerProfiles() {
	h := &ProfilesHandler{ProfileService: r.ProfileService}
	limit := httpx.RateLimitByUser(httpx.ModerateLimit)

	r.handle("POST /v1/users/{id}/profile", h.HandleCreate, limit)
	r.handle("PUT /v1/users/{id}/profile", h.HandleUpdate, limit)
	r.handle("GET /v1/users/{id}/profile", h.HandleGet, limit)
}

func (r *Router) registerDeals() {
	h := &DealsHandler{DealService: r.DealService}
	limit := httpx.RateLimitByUser(httpx.ModerateLimit)

	r.handle("GET /v1/deals", h.HandleList, limit)
	r.handle("POST /v1/deals", h.HandleCreate, limit)
	r.handle("GET /v1/deals/{id}", h.HandleGet, limit)
	r.handle("PUT /v1/deals/{id}", h.HandleUpdate, limit)
	r.handle("GET /v1/views/deals-with-houses", h.HandleDealsWithHouses, limit)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.handle("GET /livez", LivezHandler(r.startTime, r.buildVersion), httpx.RateLimitByIP(httpx.LenientLimit))
	r.handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.db, r.throttle), httpx.RateLimitByIP(httpx.LenientLimit))

	r.Mux.Handle("GET /metrics", r.metrics.Handler())
}
