package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/licensegate/api/controllers"
	"github.com/angelmondragon/licensegate/api/middleware"
	"github.com/angelmondragon/licensegate/internal/licenses"
	"github.com/angelmondragon/licensegate/pkg/config"
	"github.com/angelmondragon/licensegate/pkg/db"
	"github.com/angelmondragon/licensegate/pkg/logger"
	"github.com/angelmondragon/licensegate/pkg/redis"
)

// Dependencies are the services the HTTP surface is built on. Redis and Metrics may
// be nil; rate limiting and /metrics are then left out.
type Dependencies struct {
	DB            db.Pinger
	Redis         *redis.Client
	Validator     *licenses.Service
	Authenticator *licenses.Authenticator
	Metrics       http.Handler
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	trustedProxies, err := cfg.RateLimit.TrustedProxyPrefixes()
	if err != nil {
		logg.Warn(logg.WithField(context.Background(), "error", err.Error()), "router.trusted_proxies_ignored")
		trustedProxies = nil
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.ClientAddress(trustedProxies),
		middleware.Logging(logg),
		middleware.CORS(cfg.FeatureFlags.CORSOrigins),
	)
	r.MethodNotAllowed(controllers.MethodNotAllowed(logg))

	readiness := map[string]controllers.Pinger{"db": deps.DB, "redis": nil}
	validatePolicy := middleware.NewRateLimitPolicy(
		"validate",
		cfg.RateLimit.ValidateWindow,
		cfg.RateLimit.ValidateIPLimit,
	)
	rateLimit := func(next http.Handler) http.Handler { return next }
	if deps.Redis != nil {
		readiness["redis"] = deps.Redis
		rateLimit = middleware.RateLimit(validatePolicy, deps.Redis, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.With(rateLimit).Post("/api/license/validate", controllers.LicenseValidate(deps.Validator, logg))

	r.With(middleware.LicenseAuth(deps.Authenticator, logg)).
		Get("/api/v1/license/session", controllers.LicenseSession(logg))

	return r
}
