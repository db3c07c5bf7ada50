package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/licensegate/api/responses"
	"github.com/angelmondragon/licensegate/pkg/config"
	"github.com/angelmondragon/licensegate/pkg/logger"
	"github.com/angelmondragon/licensegate/pkg/types"
)

const (
	envHeader        = "X-Licensegate-Env"
	readinessTimeout = 2 * time.Second
)

// Pinger is a dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteJSON(w, http.StatusOK, types.HealthBody{Status: "live"})
	}
}

// HealthReady pings every named dependency. A nil pinger is reported as disabled.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		status := http.StatusOK
		body := types.HealthBody{Status: "ready", Checks: map[string]string{}}
		for name, dep := range deps {
			if dep == nil {
				body.Checks[name] = "disabled"
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				body.Checks[name] = "unavailable"
				body.Status = "unavailable"
				status = http.StatusServiceUnavailable
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{"dependency": name, "error": err.Error()}), "health.dependency_unavailable")
				}
				continue
			}
			body.Checks[name] = "ok"
		}

		responses.WriteJSON(w, status, body)
	}
}
