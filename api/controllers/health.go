package controllers

import (
	"context"
	"net/http"

	"github.com/gsatlink/pos-backend/api/responses"
	"github.com/gsatlink/pos-backend/pkg/config"
	pkgerrors "github.com/gsatlink/pos-backend/pkg/errors"
	"github.com/gsatlink/pos-backend/pkg/logger"
)

// HealthCheck reports one dependency's liveness.
type HealthCheck func(ctx context.Context) error

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-GSATPOS-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-GSATPOS-Env", cfg.App.Env)

		status := map[string]string{}
		for name, check := range checks {
			if check == nil {
				status[name] = "skipped"
				continue
			}
			if err := check(r.Context()); err != nil {
				status[name] = "down"
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable").WithDetails(status))
				return
			}
			status[name] = "up"
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": status})
	}
}
