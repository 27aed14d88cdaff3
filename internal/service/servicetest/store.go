// Package servicetest provides an in-memory BookmarkStore for tests.
package servicetest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/deppfellow/bookmarks-api/internal/model"
	"github.com/deppfellow/bookmarks-api/internal/service"
	"github.com/deppfellow/bookmarks-api/internal/sqlerr"
	"github.com/jackc/pgx/v5/pgconn"
)

var _ service.BookmarkStore = (*Store)(nil)

// Store keeps bookmarks in a map. Err, when set, is returned by every call.
// Like the bookmarks table, it rejects null columns with a not-null
// violation.
type Store struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.Bookmark

	Err error
}

func NewStore(seed ...model.Bookmark) *Store {
	s := &Store{rows: make(map[int64]model.Bookmark)}
	for _, b := range seed {
		s.rows[b.ID] = b
		s.nextID = max(s.nextID, b.ID)
	}
	return s
}

func (s *Store) ListBookmarks(_ context.Context) ([]model.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	var out []model.Bookmark
	for _, b := range s.rows {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetBookmarkByID(_ context.Context, id int64) (*model.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	b, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (s *Store) InsertBookmark(_ context.Context, p model.BookmarkPayload) (model.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return model.Bookmark{}, s.Err
	}

	if err := notNull(p); err != nil {
		return model.Bookmark{}, err
	}

	s.nextID++
	b := model.Bookmark{
		ID:          s.nextID,
		Title:       p.Title.Value,
		URL:         p.URL.Value,
		Description: p.Description.Value,
		Rating:      p.Rating.Value,
	}
	s.rows[b.ID] = b
	return b, nil
}

func (s *Store) UpdateBookmark(_ context.Context, id int64, p model.BookmarkPayload) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}

	b, ok := s.rows[id]
	if !ok {
		return 0, nil
	}

	if err := notNull(p); err != nil {
		return 0, err
	}

	if p.Title.Set {
		b.Title = p.Title.Value
	}
	if p.URL.Set {
		b.URL = p.URL.Value
	}
	if p.Description.Set {
		b.Description = p.Description.Value
	}
	if p.Rating.Set {
		b.Rating = p.Rating.Value
	}
	s.rows[id] = b
	return 1, nil
}

func (s *Store) DeleteBookmark(_ context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}

	if _, ok := s.rows[id]; !ok {
		return 0, nil
	}
	delete(s.rows, id)
	return 1, nil
}

// notNull mirrors the NOT NULL constraints of the bookmarks table, reporting
// the first null column the way Postgres does.
func notNull(p model.BookmarkPayload) error {
	for _, c := range p.Columns() {
		if c.Field.Set && c.Field.Null {
			return sqlerr.ConvertPgError(&pgconn.PgError{
				Severity:   "ERROR",
				Code:       "23502",
				Message:    fmt.Sprintf(`null value in column "%s" of relation "bookmarks" violates not-null constraint`, c.Name),
				SchemaName: "public",
				TableName:  "bookmarks",
				ColumnName: c.Name,
			})
		}
	}
	return nil
}
