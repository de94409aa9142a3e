package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/hackgods/hospital-portal/internal/gateway"
)

type dependency struct {
	name     string
	critical bool
	ping     func(ctx context.Context) error
}

type HealthHandler struct {
	deps    []dependency
	env     string
	version string
}

// NewHealthHandler checks whichever of postgres, redis and the backend are
// configured. Postgres only backs the activity log, so losing it degrades
// the portal instead of taking it down.
func NewHealthHandler(pgPool *pgxpool.Pool, rdb *redis.Client, backend *gateway.Client, env, version string) *HealthHandler {
	h := &HealthHandler{env: env, version: version}
	if backend != nil {
		h.deps = append(h.deps, dependency{name: "backend", critical: true, ping: backend.Ping})
	}
	if rdb != nil {
		h.deps = append(h.deps, dependency{name: "redis", critical: true, ping: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}
	if pgPool != nil {
		h.deps = append(h.deps, dependency{name: "postgres", ping: pgPool.Ping})
	}
	return h
}

type LivenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Env     string `json:"env,omitempty"`
}

type ReadinessResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version,omitempty"`
	Env          string            `json:"env,omitempty"`
	Dependencies map[string]string `json:"dependencies"`
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	resp := LivenessResponse{
		Status:  "ok",
		Version: h.version,
		Env:     h.env,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	deps := make(map[string]string, len(h.deps))
	status := "ok"

	for _, d := range h.deps {
		depCtx, depCancel := context.WithTimeout(ctx, time.Second)
		err := d.ping(depCtx)
		depCancel()
		if err == nil {
			deps[d.name] = "ok"
			continue
		}
		deps[d.name] = "down"
		switch {
		case d.critical:
			status = "error"
		case status == "ok":
			status = "degraded"
		}
	}

	resp := ReadinessResponse{
		Status:       status,
		Version:      h.version,
		Env:          h.env,
		Dependencies: deps,
	}

	httpStatus := http.StatusOK
	if status == "error" {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, resp)
}
