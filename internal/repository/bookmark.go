package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/deppfellow/bookmarks-api/internal/model"
	"github.com/deppfellow/bookmarks-api/internal/sqlerr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const bookmarkColumns = "id, title, url, description, rating"

// DBTX is the subset of *pgxpool.Pool the repository needs. A pgx.Tx
// satisfies it as well.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// BookmarkRepository reads and writes the bookmarks table.
type BookmarkRepository struct {
	db DBTX
}

func NewBookmarkRepository(db DBTX) *BookmarkRepository {
	return &BookmarkRepository{db: db}
}

// ListBookmarks returns every bookmark ordered by id.
func (r *BookmarkRepository) ListBookmarks(ctx context.Context) ([]model.Bookmark, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookmarkColumns+` FROM bookmarks ORDER BY id`)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	bookmarks, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Bookmark])
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}
	return bookmarks, nil
}

// GetBookmarkByID returns the bookmark with the given id, or nil when there
// is none.
func (r *BookmarkRepository) GetBookmarkByID(ctx context.Context, id int64) (*model.Bookmark, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+bookmarkColumns+` FROM bookmarks WHERE id = @id`,
		pgx.NamedArgs{"id": id},
	)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	bookmark, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[model.Bookmark])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}
	return bookmark, nil
}

// InsertBookmark stores a new bookmark and returns it with its generated id.
// A null field reaches the database as NULL and fails the NOT NULL
// constraint.
func (r *BookmarkRepository) InsertBookmark(ctx context.Context, p model.BookmarkPayload) (model.Bookmark, error) {
	rows, err := r.db.Query(ctx, `
		INSERT INTO bookmarks (title, url, description, rating)
		VALUES (@title, @url, @description, @rating)
		RETURNING `+bookmarkColumns,
		pgx.NamedArgs{
			"title":       p.Title.SQLValue(),
			"url":         p.URL.SQLValue(),
			"description": p.Description.SQLValue(),
			"rating":      p.Rating.SQLValue(),
		},
	)
	if err != nil {
		return model.Bookmark{}, sqlerr.HandleError(err)
	}

	bookmark, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Bookmark])
	if err != nil {
		return model.Bookmark{}, sqlerr.HandleError(err)
	}
	return bookmark, nil
}

// UpdateBookmark writes the fields present in p and leaves the other
// columns alone. It returns the number of rows changed, which is 0 for an
// unknown id or a payload without fields.
func (r *BookmarkRepository) UpdateBookmark(ctx context.Context, id int64, p model.BookmarkPayload) (int64, error) {
	args := pgx.NamedArgs{"id": id}
	var set []string
	for _, c := range p.Columns() {
		if !c.Field.Set {
			continue
		}
		set = append(set, fmt.Sprintf("%s = @%s", c.Name, c.Name))
		args[c.Name] = c.Field.SQLValue()
	}

	if len(set) == 0 {
		return 0, nil
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE bookmarks SET `+strings.Join(set, ", ")+` WHERE id = @id`,
		args,
	)
	if err != nil {
		return 0, sqlerr.HandleError(err)
	}
	return tag.RowsAffected(), nil
}

// DeleteBookmark removes the bookmark and returns the number of rows
// removed: 0 when it did not exist.
func (r *BookmarkRepository) DeleteBookmark(ctx context.Context, id int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM bookmarks WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return 0, sqlerr.HandleError(err)
	}
	return tag.RowsAffected(), nil
}
