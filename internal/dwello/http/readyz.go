package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/dwello/pkg/dwellosdk"
	"github.com/aussiebroadwan/dwello/pkg/httpx"
	"github.com/aussiebroadwan/dwello/pkg/slogx"
)

// Pinger is anything readiness depends on.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Pings the database and, when configured, the Redis login throttle. Only a database failure makes the service unready.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	dwellosdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	dwellosdk.HealthResponse	"a dependency is down"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, db Pinger, throttle Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := slogx.FromContext(r.Context())
		checks := &dwellosdk.HealthChecks{Database: "ok"}
		status := "ok"
		code := http.StatusOK

		if err := db.Ping(r.Context()); err != nil {
			log.Warn("readiness: database ping failed", "error", err)
			checks.Database = "error"
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		if throttle != nil {
			checks.Throttle = "ok"
			if err := throttle.Ping(r.Context()); err != nil {
				log.Warn("readiness: throttle ping failed", "error", err)
				// Logins fail open without the throttle, so this only degrades.
				checks.Throttle = "error"
				status = "degraded"
			}
		}

		httpx.WriteJSON(w, code, dwellosdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
