package router

import (
	"net/http"

	"github.com/deppfellow/bookmarks-api/internal/handler"
	"github.com/deppfellow/bookmarks-api/internal/model"
	"github.com/labstack/echo/v4"
)

func registerBookmarkRoutes(r *echo.Echo, h *handler.Handlers) {
	b := h.Bookmarks

	r.GET("/bookmarks", handler.Handle(b.Handler, b.ListBookmarks, http.StatusOK, &model.ListBookmarksRequest{}))
	r.POST("/bookmarks", handler.Handle(b.Handler, b.CreateBookmark, http.StatusCreated, &model.CreateBookmarkRequest{}))

	r.GET("/bookmarks/:id", handler.Handle(b.Handler, b.GetBookmark, http.StatusOK, &model.BookmarkIDRequest{}))
	r.DELETE("/bookmarks/:id", handler.HandleNoContent(b.Handler, b.DeleteBookmark, http.StatusNoContent, &model.BookmarkIDRequest{}))
	r.PATCH("/bookmarks/:id", handler.HandleNoContent(b.Handler, b.UpdateBookmark, http.StatusNoContent, &model.UpdateBookmarkRequest{}))
}
