package controllers

import (
	"net/http"

	"github.com/keepsakeshop/keepsake-backend/api/responses"
	"github.com/keepsakeshop/keepsake-backend/pkg/config"
	"github.com/keepsakeshop/keepsake-backend/pkg/db"
	pkgerrors "github.com/keepsakeshop/keepsake-backend/pkg/errors"
	"github.com/keepsakeshop/keepsake-backend/pkg/logger"
	pkgredis "github.com/keepsakeshop/keepsake-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Keepsake-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when the backing stores answer a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP pkgredis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Keepsake-Env", cfg.App.Env)

		checks := map[string]string{}
		healthy := true

		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				checks["database"] = "down"
				healthy = false
				logg.Error(r.Context(), "database readiness check failed", err)
			} else {
				checks["database"] = "up"
			}
		}
		if redisP != nil {
			if err := redisP.Ping(r.Context()); err != nil {
				checks["redis"] = "down"
				healthy = false
				logg.Error(r.Context(), "redis readiness check failed", err)
			} else {
				checks["redis"] = "up"
			}
		}

		if !healthy {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable"))
			return
		}
		checks["status"] = "ready"
		responses.WriteSuccess(w, checks)
	}
}
