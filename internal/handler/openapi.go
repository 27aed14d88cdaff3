package handler

import (
	"fmt"
	"net/http"
	"os"

	"github.com/deppfellow/bookmarks-api/internal/server"
	"github.com/labstack/echo/v4"
)

// openAPIUIPath is relative to the working directory, like the /static route.
const openAPIUIPath = "static/openapi.html"

// OpenAPIHandler serves the API documentation page, which loads
// /static/openapi.json.
type OpenAPIHandler struct {
	Handler
}

func NewOpenAPIHandler(s *server.Server) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler: NewHandler(s),
	}
}

// ServeOpenAPIUI serves static/openapi.html uncached.
func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	templateBytes, err := os.ReadFile(openAPIUIPath)

	c.Response().Header().Set("Cache-Control", "no-cache")

	if err != nil {
		return fmt.Errorf("failed to read OpenAPI UI template: %w", err)
	}

	if err := c.HTMLBlob(http.StatusOK, templateBytes); err != nil {
		return fmt.Errorf("failed to write HTML response: %w", err)
	}

	return nil
}
