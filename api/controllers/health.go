package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/shophub/api/responses"
	"github.com/angelmondragon/shophub/pkg/config"
	pkgerrors "github.com/angelmondragon/shophub/pkg/errors"
	"github.com/angelmondragon/shophub/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is any backing service the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadinessCheck names one dependency of the readiness probe.
type ReadinessCheck struct {
	Name   string
	Pinger Pinger
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ShopHub-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every check and reports 503 when any of them fails.
func HealthReady(cfg *config.Config, checks []ReadinessCheck, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ShopHub-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		status := map[string]string{}
		var failed bool
		for _, check := range checks {
			if check.Pinger == nil {
				continue
			}
			if err := check.Pinger.Ping(ctx); err != nil {
				status[check.Name] = "down"
				failed = true
				if logg != nil {
					logg.Warn(logg.WithField(ctx, "dependency", check.Name), "readiness check failed")
				}
				continue
			}
			status[check.Name] = "up"
		}

		if failed {
			responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeDependency, "not ready").WithDetails(status))
			return
		}
		status["status"] = "ready"
		responses.WriteSuccess(w, status)
	}
}
