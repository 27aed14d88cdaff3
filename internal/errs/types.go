package errs

import (
	"net/http"
)

func codeFor(status int) string {
	return MakeUpperCaseWithUnderscores(http.StatusText(status))
}

// NewBadRequestError creates a 400 Bad Request HTTPError.
//
// code is optional and defaults to "BAD_REQUEST".
func NewBadRequestError(message string, override bool, code *string) *HTTPError {
	formattedCode := codeFor(http.StatusBadRequest)
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusBadRequest,
		Override: override,
	}
}

// NewNotFoundError creates a 404 Not Found HTTPError.
func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	formattedCode := codeFor(http.StatusNotFound)
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusNotFound,
		Override: override,
	}
}

// NewTooManyRequestsError creates a 429 Too Many Requests HTTPError.
func NewTooManyRequestsError(message string) *HTTPError {
	return &HTTPError{
		Code:     codeFor(http.StatusTooManyRequests),
		Message:  message,
		Status:   http.StatusTooManyRequests,
		Override: true,
	}
}

// NewPlainError creates an HTTPError rendered as a text/plain body.
// An empty message produces a response without a body.
func NewPlainError(status int, message string) *HTTPError {
	return &HTTPError{
		Code:     codeFor(status),
		Message:  message,
		Status:   status,
		Override: true,
		Plain:    true,
	}
}

// ValidationError converts a validation failure into a 400 whose body is
// the failure message as plain text.
func ValidationError(err error) *HTTPError {
	return NewPlainError(http.StatusBadRequest, err.Error())
}
