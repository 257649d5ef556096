package httpx

import (
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/dwello/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig is a token bucket refilled at RequestsPerWindow per Window.
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

// Profiles shared by the router. LoadRateLimitProfiles lets deployments and
// e2e tests override them through RATELIMIT_{PROFILE}_{REQUESTS,WINDOW_SEC,BURST}.
var (
	// StrictLimit guards login and registration.
	StrictLimit = RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	// ModerateLimit guards authenticated API calls.
	ModerateLimit = RateLimitConfig{RequestsPerWindow: 60, Window: time.Minute, Burst: 30}

	// LenientLimit guards health probes.
	LenientLimit = RateLimitConfig{RequestsPerWindow: 300, Window: time.Minute, Burst: 100}
)

// LoadRateLimitProfiles applies environment overrides to the shared profiles.
func LoadRateLimitProfiles() {
	StrictLimit = RateLimitFromEnv("STRICT", StrictLimit)
	ModerateLimit = RateLimitFromEnv("MODERATE", ModerateLimit)
	LenientLimit = RateLimitFromEnv("LENIENT", LenientLimit)
}

// RateLimitFromEnv returns def with any positive RATELIMIT_{prefix}_* values
// applied. Invalid values are ignored.
func RateLimitFromEnv(prefix string, def RateLimitConfig) RateLimitConfig {
	cfg := def
	if n, ok := positiveEnv("RATELIMIT_" + prefix + "_REQUESTS"); ok {
		cfg.RequestsPerWindow = n
	}
	if n, ok := positiveEnv("RATELIMIT_" + prefix + "_WINDOW_SEC"); ok {
		cfg.Window = time.Duration(n) * time.Second
	}
	if n, ok := positiveEnv("RATELIMIT_" + prefix + "_BURST"); ok {
		cfg.Burst = n
	}
	return cfg
}

func positiveEnv(key string) (int, bool) {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// KeyExtractor groups requests into buckets.
type KeyExtractor func(*http.Request) string

// IPKeyExtractor uses the first X-Forwarded-For hop, then X-Real-IP, then the
// socket address.
func IPKeyExtractor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// UserIDKeyExtractor returns the authenticated user id, or "".
func UserIDKeyExtractor(r *http.Request) string {
	id, _ := UserIDFromContext(r.Context())
	return id
}

// CompositeKeyExtractor joins the non-empty results of extractors with sep.
func CompositeKeyExtractor(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(extractors))
		for _, ex := range extractors {
			if key := ex(r); key != "" {
				parts = append(parts, key)
			}
		}
		return strings.Join(parts, sep)
	}
}

// LimitedResponder writes the 429 body. Retry-After is already set.
type LimitedResponder func(w http.ResponseWriter, r *http.Request)

func defaultLimited(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusTooManyRequests, map[string]any{
		"success":       false,
		"error_message": "rate_limit_exceeded",
	})
}

// RateLimiter holds one token bucket per key.
type RateLimiter struct {
	cfg     RateLimitConfig
	key     KeyExtractor
	limited LimitedResponder

	limit rate.Limit

	mu          sync.Mutex
	buckets     map[string]*rate.Limiter
	lastCleanup time.Time
}

func NewRateLimiter(cfg RateLimitConfig, key KeyExtractor) *RateLimiter {
	return &RateLimiter{
		cfg:         cfg,
		key:         key,
		limited:     defaultLimited,
		limit:       rate.Limit(float64(cfg.RequestsPerWindow) / cfg.Window.Seconds()),
		buckets:     make(map[string]*rate.Limiter),
		lastCleanup: time.Now(),
	}
}

// OnLimited replaces the 429 body writer.
func (rl *RateLimiter) OnLimited(fn LimitedResponder) *RateLimiter {
	rl.limited = fn
	return rl
}

func (rl *RateLimiter) bucket(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Drop idle buckets every few minutes. A full bucket has not been touched
	// for at least one refill period.
	if time.Since(rl.lastCleanup) > 5*time.Minute {
		for k, b := range rl.buckets {
			if b.Tokens() >= float64(rl.cfg.Burst) {
				delete(rl.buckets, k)
			}
		}
		rl.lastCleanup = time.Now()
	}

	b, ok := rl.buckets[key]
	if !ok {
		b = rate.NewLimiter(rl.limit, rl.cfg.Burst)
		rl.buckets[key] = b
	}
	return b
}

// Middleware enforces the limit. Requests without a key are let through.
func (rl *RateLimiter) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := rl.key(r)
			if key == "" {
				slogx.FromContext(r.Context()).Warn("rate limit: no key for request, allowing")
				next.ServeHTTP(w, r)
				return
			}

			b := rl.bucket(key)
			if b.Allow() {
				next.ServeHTTP(w, r)
				return
			}

			res := b.Reserve()
			retryAfter := max(int(res.Delay().Seconds()), 1)
			res.Cancel()

			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.cfg.RequestsPerWindow))
			w.Header().Set("X-RateLimit-Window", rl.cfg.Window.String())

			slogx.FromContext(r.Context()).Warn("rate limit exceeded",
				"key", key,
				"endpoint", r.URL.Path,
				"retry_after", retryAfter,
			)
			rl.limited(w, r)
		})
	}
}

// RateLimitByIP limits by client address.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	return NewRateLimiter(cfg, IPKeyExtractor).Middleware()
}

// RateLimitByUser limits by user id plus address, degrading to address only
// for anonymous callers.
func RateLimitByUser(cfg RateLimitConfig) Middleware {
	return NewRateLimiter(cfg, CompositeKeyExtractor(":", UserIDKeyExtractor, IPKeyExtractor)).Middleware()
}
