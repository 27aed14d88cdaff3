package handler

import (
	"net/http"

	"github.com/deppfellow/bookmarks-api/internal/server"
	"github.com/labstack/echo/v4"
)

// RootHandler answers the API root.
type RootHandler struct {
	Handler
}

func NewRootHandler(s *server.Server) *RootHandler {
	return &RootHandler{
		Handler: NewHandler(s),
	}
}

func (h *RootHandler) Hello(c echo.Context) error {
	return c.String(http.StatusOK, "Hello, world!")
}
