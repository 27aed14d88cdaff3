// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API routes,
// mapping specific paths to their corresponding handlers
package router

import (
	"github.com/deppfellow/bookmarks-api/internal/handler"
	"github.com/deppfellow/bookmarks-api/internal/middleware"
	"github.com/deppfellow/bookmarks-api/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the echo instance with the global middleware chain and
// every route registered.
//
// Order matters: the request id must exist before the context logger is
// built, and the New Relic transaction before tracing attributes are added.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Global.Secure(),
		middlewares.Global.CORS(),
		middlewares.RateLimit.Limit(),
	)

	registerSystemRoutes(router, h)
	registerBookmarkRoutes(router, h)

	return router
}
