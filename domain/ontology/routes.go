package ontology

import (
	"github.com/labstack/echo/v4"

	"github.com/ontoforge/ontology-core/pkg/auth"
)

// RegisterRoutes registers the object/link store routes. Everything requires
// an authenticated tenant.
func RegisterRoutes(e *echo.Echo, h *Handler, authMiddleware *auth.Middleware) {
	g := e.Group("/api/v1")
	g.Use(authMiddleware.Require())

	g.GET("/objects/:kind/:id", h.Get)
	g.POST("/objects/:kind/query", h.Query)
	g.POST("/objects/:kind/count", h.Count)
	g.POST("/objects/:kind", h.Create)
	g.PATCH("/objects/:kind/:id", h.Update)
	g.DELETE("/objects/:kind/:id", h.Delete)

	g.GET("/objects/:kind/:id/linked/:linkType", h.Linked)
	g.POST("/links", h.CreateLink)
	g.DELETE("/links/:id", h.DeleteLink)

	g.POST("/batch-query", h.BatchQuery)
}
