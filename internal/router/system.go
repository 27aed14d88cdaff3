package router

import (
	"github.com/deppfellow/bookmarks-api/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers the endpoints that are not part of the
// bookmarks API: root greeting, health, and the OpenAPI docs with their
// static assets.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/", h.Root.Hello)

	r.GET("/status", h.Health.CheckHealth)

	r.Static("/static", "static")

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
