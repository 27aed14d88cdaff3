// Package validation binds request data and validates it.
//
// Payloads validate themselves through the Validatable interface. A
// MissingFieldsError becomes a plain-text 400 naming the missing fields;
// binder failures become a JSON 400.
package validation

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/deppfellow/bookmarks-api/internal/errs"
	"github.com/labstack/echo/v4"
)

// Validatable is implemented by request payload types that know how to
// validate themselves.
type Validatable interface {
	Validate() error
}

// MissingFieldsError lists required fields, in a fixed order, that the
// request did not provide.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return strings.Join(e.Fields, ", ") + " are required."
}

// BindAndValidate binds path parameters and the body into payload and then
// runs payload.Validate(). payload must be a pointer.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		return bindError(err)
	}

	if err := payload.Validate(); err != nil {
		return Convert(err)
	}

	return nil
}

// Convert maps a validation failure onto the HTTP error returned to the
// client. Errors it does not recognise are returned unchanged.
func Convert(err error) error {
	var missing *MissingFieldsError
	if errors.As(err, &missing) {
		return errs.ValidationError(missing)
	}

	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	return err
}

// bindError converts a binder failure. Echo reports them as *echo.HTTPError
// whose Message already describes the problem; the status is kept.
func bindError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		message := fmt.Sprint(he.Message)
		if he.Code != http.StatusBadRequest {
			return &errs.HTTPError{
				Code:    errs.MakeUpperCaseWithUnderscores(http.StatusText(he.Code)),
				Message: message,
				Status:  he.Code,
			}
		}
		return errs.NewBadRequestError(message, false, nil)
	}
	return errs.NewBadRequestError(err.Error(), false, nil)
}
