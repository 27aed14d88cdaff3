package service

import (
	"context"
	"net/http"

	"github.com/deppfellow/bookmarks-api/internal/config"
	"github.com/deppfellow/bookmarks-api/internal/errs"
	"github.com/deppfellow/bookmarks-api/internal/lib/xss"
	"github.com/deppfellow/bookmarks-api/internal/model"
	"github.com/deppfellow/bookmarks-api/internal/validation"
	"github.com/rs/zerolog"
)

// BookmarkStore is the persistence the bookmark service depends on.
// *repository.BookmarkRepository implements it.
type BookmarkStore interface {
	ListBookmarks(ctx context.Context) ([]model.Bookmark, error)
	GetBookmarkByID(ctx context.Context, id int64) (*model.Bookmark, error)
	InsertBookmark(ctx context.Context, p model.BookmarkPayload) (model.Bookmark, error)
	UpdateBookmark(ctx context.Context, id int64, p model.BookmarkPayload) (int64, error)
	DeleteBookmark(ctx context.Context, id int64) (int64, error)
}

type BookmarkService struct {
	store        BookmarkStore
	uniformReads bool
}

func NewBookmarkService(store BookmarkStore, cfg config.SanitizeConfig) *BookmarkService {
	return &BookmarkService{
		store:        store,
		uniformReads: cfg.UniformReads,
	}
}

// List returns all bookmarks as stored. With uniform reads enabled they are
// sanitized like a single fetch.
func (s *BookmarkService) List(ctx context.Context) ([]model.Bookmark, error) {
	bookmarks, err := s.store.ListBookmarks(ctx)
	if err != nil {
		return nil, err
	}

	if bookmarks == nil {
		bookmarks = []model.Bookmark{}
	}

	if s.uniformReads {
		for i := range bookmarks {
			bookmarks[i] = sanitize(bookmarks[i])
		}
	}
	return bookmarks, nil
}

// Get returns the sanitized bookmark with the given path id.
func (s *BookmarkService) Get(ctx context.Context, id string) (*model.Bookmark, error) {
	bookmark, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if bookmark == nil {
		zerolog.Ctx(ctx).Error().Msgf("bookmark with id %s not found", id)
		return nil, errs.NewPlainError(http.StatusNotFound, "Bookmark Not Found")
	}

	sanitized := sanitize(*bookmark)
	return &sanitized, nil
}

// Create stores a bookmark whose payload already passed ValidateCreate.
func (s *BookmarkService) Create(ctx context.Context, p model.BookmarkPayload) (*model.Bookmark, error) {
	bookmark, err := s.store.InsertBookmark(ctx, p)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Int64("bookmark_id", bookmark.ID).Msg("bookmark created")
	return &bookmark, nil
}

// Delete removes the bookmark with the given path id.
func (s *BookmarkService) Delete(ctx context.Context, id string) error {
	bookmarkID, ok := model.ParseID(id)
	if !ok {
		return errs.NewPlainError(http.StatusNotFound, "Bookmark does not exist")
	}

	n, err := s.store.DeleteBookmark(ctx, bookmarkID)
	if err != nil {
		return err
	}

	if n == 0 {
		return errs.NewPlainError(http.StatusNotFound, "Bookmark does not exist")
	}

	zerolog.Ctx(ctx).Info().Int64("bookmark_id", bookmarkID).Msg("bookmark deleted")
	return nil
}

// Update applies a partial update. The bookmark must exist before the
// payload is looked at: an unknown id is a 404 without a body even when the
// payload is empty.
func (s *BookmarkService) Update(ctx context.Context, id string, p model.BookmarkPayload) error {
	bookmark, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if bookmark == nil {
		return errs.NewPlainError(http.StatusNotFound, "")
	}

	if err := p.ValidateUpdate(); err != nil {
		return validation.Convert(err)
	}

	if _, err := s.store.UpdateBookmark(ctx, bookmark.ID, p); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().Int64("bookmark_id", bookmark.ID).Msg("bookmark updated")
	return nil
}

// find resolves a path id. Ids that cannot exist yield (nil, nil).
func (s *BookmarkService) find(ctx context.Context, id string) (*model.Bookmark, error) {
	bookmarkID, ok := model.ParseID(id)
	if !ok {
		return nil, nil
	}
	return s.store.GetBookmarkByID(ctx, bookmarkID)
}

func sanitize(b model.Bookmark) model.Bookmark {
	return model.Bookmark{
		ID:          b.ID,
		Title:       xss.Sanitize(b.Title),
		URL:         xss.Sanitize(b.URL),
		Description: xss.Sanitize(b.Description),
		Rating:      xss.Sanitize(b.Rating),
	}
}
