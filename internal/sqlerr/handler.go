package sqlerr

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/deppfellow/bookmarks-api/internal/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var uniqueKeyRe = regexp.MustCompile(`_([^_]+)_(?:key|ukey)$`)

// ErrCode reports the Code of err if it is (or wraps) an *Error,
// and Other otherwise.
func ErrCode(err error) Code {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code
	}
	return Other
}

// ConvertPgError converts a raw Postgres error into an *Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	e := &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
	e.AppCode = generateErrorCode(e.TableName, e.Code)
	e.UserMessage = formatUserFriendlyMessage(e)
	return e
}

// generateErrorCode creates codes of the form <DOMAIN>_<ACTION>, e.g.
// bookmarks + NotNullViolation => BOOKMARK_REQUIRED.
func generateErrorCode(tableName string, errType Code) string {
	if tableName == "" {
		tableName = "RECORD"
	}

	domain := strings.ToUpper(tableName)
	if strings.HasSuffix(domain, "S") && len(domain) > 1 {
		domain = domain[:len(domain)-1]
	}

	action := "ERROR"
	switch errType {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation, InvalidTextRepresentation:
		action = "INVALID"
	case ConnectionFailure:
		action = "UNAVAILABLE"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

func formatUserFriendlyMessage(sqlErr *Error) string {
	entityName := getEntityName(sqlErr.TableName, sqlErr.ColumnName)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		return fmt.Sprintf("The referenced %s does not exist", entityName)

	case UniqueViolation:
		fieldName := humanizeText(extractColumnForUniqueViolation(sqlErr.ConstraintName))
		if fieldName == "" {
			fieldName = "identifier"
		}
		return fmt.Sprintf("A %s with this %s already exists", entityName, fieldName)

	case NotNullViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName == "" {
			fieldName = "field"
		}
		return fmt.Sprintf("The %s is required", fieldName)

	case CheckViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", fieldName)
		}
		return "One or more values do not meet required conditions"

	case ConnectionFailure:
		return "The database is unreachable"

	default:
		return "An error occurred while processing your request"
	}
}

// getEntityName infers an entity name: "<x>_id" columns win, then the
// singularized table name, then "record".
func getEntityName(tableName, columnName string) string {
	if columnName != "" && strings.HasSuffix(strings.ToLower(columnName), "_id") {
		entity := strings.TrimSuffix(strings.ToLower(columnName), "_id")
		return humanizeText(entity)
	}

	if tableName != "" {
		entity := tableName
		if strings.HasSuffix(entity, "s") && len(entity) > 1 {
			entity = entity[:len(entity)-1]
		}
		return humanizeText(entity)
	}

	return "record"
}

// humanizeText converts "first_name" into "First Name".
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// extractColumnForUniqueViolation infers the column from constraint names
// shaped like "unique_<table>_<column>" or "<table>_<column>_key".
func extractColumnForUniqueViolation(constraintName string) string {
	if constraintName == "" {
		return ""
	}

	if strings.HasPrefix(constraintName, "unique_") {
		parts := strings.Split(constraintName, "_")
		if len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}

	matches := uniqueKeyRe.FindStringSubmatch(constraintName)
	if len(matches) > 1 {
		return matches[1]
	}

	return ""
}

// HandleError converts a low-level database error into an application error.
//
//   - *errs.HTTPError and *Error: returned unchanged.
//   - ErrNoRows: a 404 "Resource not found".
//   - *pgconn.PgError: converted into a classified *Error.
//   - connection failures and anything else: an *Error with Code
//     ConnectionFailure or Other wrapping the original.
//
// Every *Error is a storage error: the global handler answers it with 500.
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return errs.NewPlainError(http.StatusNotFound, "Resource not found")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return ConvertPgError(pgErr)
	}

	code := Other
	var connectErr *pgconn.ConnectError
	switch {
	case errors.As(err, &connectErr), pgconn.Timeout(err):
		code = ConnectionFailure
	case errors.Is(err, context.Canceled):
		code = QueryCanceled
	}

	e := &Error{
		Code:      code,
		Severity:  SeverityError,
		Message:   err.Error(),
		driverErr: err,
	}
	e.AppCode = generateErrorCode("", code)
	e.UserMessage = formatUserFriendlyMessage(e)
	return e
}
