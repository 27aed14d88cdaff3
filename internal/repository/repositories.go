// Package repository handles all interactions with the database.
//
// It contains raw SQL queries and methods to fetch, persist,
// or update data, abstracting SQL logic away from the service layer.
package repository

import (
	"github.com/deppfellow/bookmarks-api/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Bookmarks *BookmarkRepository
}

// NewRepositories builds every repository on top of the server's pool.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Bookmarks: NewBookmarkRepository(s.DB.Pool),
	}
}
