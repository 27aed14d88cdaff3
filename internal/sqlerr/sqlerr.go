// Package sqlerr specifically handles database driver errors.
//
// It parses error codes from the database driver and converts them into
// a classified storage error (SQLSTATE class, table, column, constraint)
// that the global error handler can log in full and report as a 500.
package sqlerr
