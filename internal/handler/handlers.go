package handler

import (
	"github.com/deppfellow/bookmarks-api/internal/server"
	"github.com/deppfellow/bookmarks-api/internal/service"
)

// Handlers groups every HTTP handler so the router receives one value.
type Handlers struct {
	Root      *RootHandler
	Health    *HealthHandler
	OpenAPI   *OpenAPIHandler
	Bookmarks *BookmarkHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Root:      NewRootHandler(s),
		Health:    NewHealthHandler(s),
		OpenAPI:   NewOpenAPIHandler(s),
		Bookmarks: NewBookmarkHandler(s, services.Bookmarks),
	}
}
