package audit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ontoforge/ontology-core/domain/tenant"
	"github.com/ontoforge/ontology-core/pkg/apperror"
	"github.com/ontoforge/ontology-core/pkg/auth"
)

// Handler exposes the audit query surface.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Query lists audit entries, newest first. Admins only.
// GET /api/v1/audit-logs
func (h *Handler) Query(c echo.Context) error {
	tc, err := tenant.Require(c.Request().Context())
	if err != nil {
		return err
	}
	if !tc.Role.AtLeast(tenant.RoleAdmin) {
		return apperror.ErrForbidden.WithMessage("audit logs require an admin role")
	}

	f, err := parseFilter(c)
	if err != nil {
		return err
	}
	entries, err := h.svc.Query(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"data": entries})
}

func parseFilter(c echo.Context) (QueryFilter, error) {
	var f QueryFilter
	if raw := c.QueryParam("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return f, apperror.NewBadRequest("malformed user_id")
		}
		f.UserID = &id
	}
	f.Action = c.QueryParam("action")
	f.ResourceType = c.QueryParam("resource_type")
	if raw := c.QueryParam("resource_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return f, apperror.NewBadRequest("malformed resource_id")
		}
		f.ResourceID = &id
	}
	if raw := c.QueryParam("from"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, apperror.NewBadRequest("malformed from timestamp")
		}
		f.From = &ts
	}
	if raw := c.QueryParam("to"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, apperror.NewBadRequest("malformed to timestamp")
		}
		f.To = &ts
	}
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			f.Limit = n
		}
	}
	if raw := c.QueryParam("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			f.Offset = n
		}
	}
	return f, nil
}

// RegisterRoutes registers the audit routes.
func RegisterRoutes(e *echo.Echo, h *Handler, authMiddleware *auth.Middleware) {
	g := e.Group("/api/v1")
	g.Use(authMiddleware.Require())
	g.GET("/audit-logs", h.Query)
}
