package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atriumcare/carecoord-backend/pkg/config"
	"github.com/atriumcare/carecoord-backend/pkg/db"
	"github.com/atriumcare/carecoord-backend/pkg/logger"
	"github.com/atriumcare/carecoord-backend/pkg/redis"
)

// newOpsRouter exposes the worker's operational endpoints. This is not the
// product API; it exists for load balancers and Prometheus.
func newOpsRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "env": cfg.App.Env})
	})

	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{"db": "ok", "redis": "ok"}
		status := http.StatusOK

		if err := dbP.Ping(ctx); err != nil {
			logg.Error(req.Context(), "readiness db ping failed", err)
			checks["db"] = "unavailable"
			status = http.StatusServiceUnavailable
		}
		if err := redisP.Ping(ctx); err != nil {
			logg.Error(req.Context(), "readiness redis ping failed", err)
			checks["redis"] = "unavailable"
			status = http.StatusServiceUnavailable
		}

		writeJSON(w, status, checks)
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
