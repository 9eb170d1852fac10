// Package handlers provides HTTP handlers for AssetVault.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/abdul-hamid-achik/assetvault/internal/store"
)

// HealthHandler handles health check endpoints. The index database and
// Redis are optional; nil dependencies are not checked.
type HealthHandler struct {
	store store.Store
	db    *pgxpool.Pool
	redis *redis.Client
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(s store.Store, db *pgxpool.Pool, redis *redis.Client) *HealthHandler {
	return &HealthHandler{
		store: s,
		db:    db,
		redis: redis,
	}
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services,omitempty"`
}

// Liveness handles the /health endpoint (basic liveness check).
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Readiness handles the /ready endpoint (checks all dependencies).
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	services := make(map[string]string)
	allHealthy := true
	check := func(name string, err error) {
		if err != nil {
			slog.Error("health check failed", "service", name, "error", err)
			services[name] = "unhealthy"
			allHealthy = false
			return
		}
		services[name] = "healthy"
	}

	_, err := h.store.Meta()
	check("store", err)

	if h.db != nil {
		check("postgres", h.db.Ping(ctx))
	}
	if h.redis != nil {
		check("redis", h.redis.Ping(ctx).Err())
	}

	status := "healthy"
	statusCode := http.StatusOK
	if !allHealthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	resp := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  services,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}
