// Package model holds the bookmark entity and the request payloads the
// HTTP layer binds into.
package model

import (
	"strconv"

	"github.com/deppfellow/bookmarks-api/internal/validation"
)

// Bookmark is a saved link. Every column is text except the id, which the
// database assigns on insert.
type Bookmark struct {
	ID          int64  `json:"id" db:"id"`
	Title       string `json:"title" db:"title"`
	URL         string `json:"url" db:"url"`
	Description string `json:"description" db:"description"`
	Rating      string `json:"rating" db:"rating"`
}

// BookmarkPayload is the writable part of a Bookmark as received in a
// request body.
type BookmarkPayload struct {
	Title       Field `json:"title"`
	URL         Field `json:"url"`
	Description Field `json:"description"`
	Rating      Field `json:"rating"`
}

// Column pairs a column name with the payload field that feeds it.
type Column struct {
	Name  string
	Field Field
}

// Columns returns every payload field in declaration order.
func (p BookmarkPayload) Columns() []Column {
	return []Column{
		{Name: "title", Field: p.Title},
		{Name: "url", Field: p.URL},
		{Name: "description", Field: p.Description},
		{Name: "rating", Field: p.Rating},
	}
}

// ValidateCreate fails when any of the four keys is absent. Empty strings
// and null are present.
func (p BookmarkPayload) ValidateCreate() error {
	var missing []string
	for _, c := range p.Columns() {
		if !c.Field.Set {
			missing = append(missing, c.Name)
		}
	}

	if len(missing) > 0 {
		return &validation.MissingFieldsError{Fields: missing}
	}
	return nil
}

// ValidateUpdate fails when none of the four fields is truthy. The error
// always names all four fields.
func (p BookmarkPayload) ValidateUpdate() error {
	names := make([]string, 0, 4)
	for _, c := range p.Columns() {
		if c.Field.Truthy() {
			return nil
		}
		names = append(names, c.Name)
	}
	return &validation.MissingFieldsError{Fields: names}
}

// CreateBookmarkRequest is the body of POST /bookmarks.
type CreateBookmarkRequest struct {
	BookmarkPayload
}

func (r *CreateBookmarkRequest) Validate() error {
	return r.ValidateCreate()
}

// BookmarkIDRequest addresses a single bookmark by its path id.
type BookmarkIDRequest struct {
	ID string `param:"id" json:"-"`
}

func (r *BookmarkIDRequest) Validate() error {
	return nil
}

// BookmarkID parses the path id. ok is false for anything that cannot be
// the id of a stored bookmark.
func (r *BookmarkIDRequest) BookmarkID() (id int64, ok bool) {
	return ParseID(r.ID)
}

// UpdateBookmarkRequest is PATCH /bookmarks/:id. Validation runs in the
// service, after the bookmark is known to exist.
type UpdateBookmarkRequest struct {
	ID string `param:"id" json:"-"`
	BookmarkPayload
}

func (r *UpdateBookmarkRequest) Validate() error {
	return nil
}

func (r *UpdateBookmarkRequest) BookmarkID() (id int64, ok bool) {
	return ParseID(r.ID)
}

// ParseID accepts positive base-10 integers only.
func ParseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ListBookmarksRequest is GET /bookmarks. It takes no parameters.
type ListBookmarksRequest struct{}

func (r *ListBookmarksRequest) Validate() error {
	return nil
}
