package handlers

import (
	"context"
	"net/http"
	"time"

	"agendly/internal/repositories"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// HealthHandlers reports liveness and dependency readiness for the platform.
type HealthHandlers struct {
	db          repositories.Database
	redisClient *redis.Client
	startedAt   time.Time
}

func NewHealthHandlers(db repositories.Database, redisClient *redis.Client) *HealthHandlers {
	return &HealthHandlers{
		db:          db,
		redisClient: redisClient,
		startedAt:   time.Now(),
	}
}

// HealthCheck handles GET /health — process liveness only.
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(h.startedAt).String(),
	})
}

// ReadinessCheck handles GET /ready — verifies the database and redis are
// reachable before the instance takes traffic.
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{
		"database": "ok",
		"redis":    "ok",
	}
	healthy := true

	if _, err := h.db.Exec(ctx, "SELECT 1"); err != nil {
		checks["database"] = err.Error()
		healthy = false
	}
	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		checks["redis"] = err.Error()
		healthy = false
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, map[string]interface{}{
		"status": map[bool]string{true: "ready", false: "unavailable"}[healthy],
		"checks": checks,
	})
}

// DetailedHealthCheck handles GET /health/detailed — per-dependency status with
// round-trip latency, for operators rather than load balancers.
func (h *HealthHandlers) DetailedHealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	checks := map[string]interface{}{}
	healthy := true

	dbStart := time.Now()
	if _, err := h.db.Exec(ctx, "SELECT 1"); err != nil {
		checks["database"] = map[string]string{"status": "error", "error": err.Error()}
		healthy = false
	} else {
		checks["database"] = map[string]string{"status": "ok", "latency": time.Since(dbStart).String()}
	}

	redisStart := time.Now()
	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		checks["redis"] = map[string]string{"status": "error", "error": err.Error()}
		healthy = false
	} else {
		checks["redis"] = map[string]string{"status": "ok", "latency": time.Since(redisStart).String()}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, map[string]interface{}{
		"status": map[bool]string{true: "ok", false: "degraded"}[healthy],
		"uptime": time.Since(h.startedAt).String(),
		"checks": checks,
	})
}
