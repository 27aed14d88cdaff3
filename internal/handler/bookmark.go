package handler

import (
	"strconv"

	"github.com/deppfellow/bookmarks-api/internal/model"
	"github.com/deppfellow/bookmarks-api/internal/server"
	"github.com/deppfellow/bookmarks-api/internal/service"
	"github.com/labstack/echo/v4"
)

type BookmarkHandler struct {
	Handler
	bookmarks *service.BookmarkService
}

func NewBookmarkHandler(s *server.Server, bookmarks *service.BookmarkService) *BookmarkHandler {
	return &BookmarkHandler{
		Handler:   NewHandler(s),
		bookmarks: bookmarks,
	}
}

// ListBookmarks returns every bookmark. Values are returned as stored.
func (h *BookmarkHandler) ListBookmarks(c echo.Context, _ *model.ListBookmarksRequest) ([]model.Bookmark, error) {
	return h.bookmarks.List(c.Request().Context())
}

// GetBookmark returns one bookmark with its text sanitized.
func (h *BookmarkHandler) GetBookmark(c echo.Context, req *model.BookmarkIDRequest) (*model.Bookmark, error) {
	return h.bookmarks.Get(c.Request().Context(), req.ID)
}

// CreateBookmark stores a bookmark and points Location at it.
func (h *BookmarkHandler) CreateBookmark(c echo.Context, req *model.CreateBookmarkRequest) (*model.Bookmark, error) {
	bookmark, err := h.bookmarks.Create(c.Request().Context(), req.BookmarkPayload)
	if err != nil {
		return nil, err
	}

	c.Response().Header().Set(echo.HeaderLocation, "/bookmarks/"+strconv.FormatInt(bookmark.ID, 10))
	return bookmark, nil
}

func (h *BookmarkHandler) DeleteBookmark(c echo.Context, req *model.BookmarkIDRequest) error {
	return h.bookmarks.Delete(c.Request().Context(), req.ID)
}

// UpdateBookmark applies a partial update.
func (h *BookmarkHandler) UpdateBookmark(c echo.Context, req *model.UpdateBookmarkRequest) error {
	return h.bookmarks.Update(c.Request().Context(), req.ID, req.BookmarkPayload)
}
