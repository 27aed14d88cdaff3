// Package service contains the business logic.
//
// It sits between the handler and repository layers.
// It receives validated data from the handler, performs
// business operations, and calls repository methods to interact
// with the data
package service

import (
	"github.com/deppfellow/bookmarks-api/internal/repository"
	"github.com/deppfellow/bookmarks-api/internal/server"
)

var _ BookmarkStore = (*repository.BookmarkRepository)(nil)

type Services struct {
	Bookmarks *BookmarkService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	return &Services{
		Bookmarks: NewBookmarkService(repos.Bookmarks, s.Config.Sanitize),
	}, nil
}
