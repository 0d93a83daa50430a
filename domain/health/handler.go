// Package health exposes liveness and readiness endpoints.
package health

import (
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// Handler answers health probes.
type Handler struct {
	pool    *pgxpool.Pool
	started time.Time
}

func NewHandler(pool *pgxpool.Pool) *Handler {
	return &Handler{pool: pool, started: time.Now()}
}

// Live reports process liveness.
// GET /health
func (h *Handler) Live(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(h.started).String(),
	})
}

// Ready reports readiness, including database connectivity.
// GET /ready
func (h *Handler) Ready(c echo.Context) error {
	if err := h.pool.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{
			"status": "degraded",
			"error":  "database unreachable",
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "ok"})
}

// RegisterRoutes registers the unauthenticated health routes.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.GET("/health", h.Live)
	e.GET("/healthz", h.Live)
	e.GET("/ready", h.Ready)
}

var Module = fx.Module("health",
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)
