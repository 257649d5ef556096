package httpx

import (
	"net/http"
	"strconv"
	"strings"
)

type CORSConfig struct {
	AllowOrigin      string
	AllowMethods     []string
	AllowHeaders     []string
	AllowCredentials bool
}

// DefaultCORS is what the web client expects.
var DefaultCORS = CORSConfig{
	AllowOrigin:      "*",
	AllowMethods:     []string{http.MethodPost, http.MethodGet, http.MethodPut, http.MethodOptions},
	AllowHeaders:     []string{"Content-Type", "X-API-KEY"},
	AllowCredentials: true,
}

// CORS sets the CORS headers on every response and answers preflight
// requests with an empty 200.
func CORS(cfg CORSConfig) Middleware {
	methods := strings.Join(cfg.AllowMethods, ", ")
	headers := strings.Join(cfg.AllowHeaders, ", ")
	credentials := strconv.FormatBool(cfg.AllowCredentials)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", cfg.AllowOrigin)
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			h.Set("Access-Control-Allow-Credentials", credentials)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
