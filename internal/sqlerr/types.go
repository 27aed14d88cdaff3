package sqlerr

import "fmt"

// Code is a coarse classification of a database failure.
type Code string

const (
	Other                     Code = "other"
	NotNullViolation          Code = "not_null_violation"
	ForeignKeyViolation       Code = "foreign_key_violation"
	UniqueViolation           Code = "unique_violation"
	CheckViolation            Code = "check_violation"
	InvalidTextRepresentation Code = "invalid_text_representation"
	ConnectionFailure         Code = "connection_failure"
	QueryCanceled             Code = "query_canceled"
	UndefinedTable            Code = "undefined_table"
)

// Severity mirrors the Postgres error severity levels.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityFatal   Severity = "FATAL"
	SeverityPanic   Severity = "PANIC"
	SeverityWarning Severity = "WARNING"
	SeverityNotice  Severity = "NOTICE"
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityLog     Severity = "LOG"
	SeverityUnknown Severity = "UNKNOWN"
)

// Error is a classified storage error. It keeps the driver error for
// Unwrap so callers can still reach *pgconn.PgError.
type Error struct {
	Code           Code     `json:"code"`
	Severity       Severity `json:"severity"`
	DatabaseCode   string   `json:"database_code,omitempty"`
	Message        string   `json:"message"`
	SchemaName     string   `json:"schema_name,omitempty"`
	TableName      string   `json:"table_name,omitempty"`
	ColumnName     string   `json:"column_name,omitempty"`
	DataTypeName   string   `json:"data_type_name,omitempty"`
	ConstraintName string   `json:"constraint_name,omitempty"`

	// AppCode is a machine-friendly code such as BOOKMARK_REQUIRED.
	AppCode string `json:"app_code"`

	// UserMessage is a readable description of the failure.
	UserMessage string `json:"user_message"`

	driverErr error
}

func (e *Error) Error() string {
	if e.DatabaseCode != "" {
		return fmt.Sprintf("%s (SQLSTATE %s)", e.Message, e.DatabaseCode)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.driverErr
}

// MapCode maps a SQLSTATE onto a Code.
func MapCode(sqlState string) Code {
	switch sqlState {
	case "23502":
		return NotNullViolation
	case "23503":
		return ForeignKeyViolation
	case "23505":
		return UniqueViolation
	case "23514":
		return CheckViolation
	case "22P02":
		return InvalidTextRepresentation
	case "57014":
		return QueryCanceled
	case "42P01":
		return UndefinedTable
	}

	// Class 08: connection exception.
	if len(sqlState) == 5 && sqlState[:2] == "08" {
		return ConnectionFailure
	}
	return Other
}

// MapSeverity maps a Postgres severity string onto a Severity.
func MapSeverity(severity string) Severity {
	switch Severity(severity) {
	case SeverityError, SeverityFatal, SeverityPanic, SeverityWarning,
		SeverityNotice, SeverityDebug, SeverityInfo, SeverityLog:
		return Severity(severity)
	default:
		return SeverityUnknown
	}
}
