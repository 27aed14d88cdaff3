// Package errs defines custom error types and utilities.
//
// Its purpose is to give handlers one error shape (HTTPError) that the
// global error handler knows how to render, either as a JSON document or
// as the plain-text bodies the bookmarks API promises its clients.
package errs
