package middleware

import (
	"net/http"

	"github.com/deppfellow/bookmarks-api/internal/errs"
	"github.com/deppfellow/bookmarks-api/internal/server"
	"github.com/deppfellow/bookmarks-api/internal/sqlerr"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// GlobalMiddlewares groups the middleware applied to every route and the
// global error handler. They read config from the server container.
type GlobalMiddlewares struct {
	server *server.Server
}

func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

// CORS allows the configured origins.
func (global *GlobalMiddlewares) CORS() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: global.server.Config.Server.CORSAllowedOrigins,
	})
}

// RequestLogger writes one "API" line per request, at a level picked from
// the final status. Production logs a reduced set of fields.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	production := global.server.Config.Primary.IsProduction()

	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogHost:    true,
		LogMethod:  true,
		LogURIPath: true,

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			// The error handler writes the response after this runs, so the
			// status has to be derived from the error.
			// See https://github.com/labstack/echo/issues/2310#issuecomment-1288196898
			statusCode := v.Status
			if v.Error != nil {
				statusCode = statusFromError(v.Error)
			}

			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case statusCode >= 500:
				e = logger.Error().Err(v.Error)
			case statusCode >= 400:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			e = e.
				Dur("latency", v.Latency).
				Int("status", statusCode).
				Str("method", v.Method).
				Str("uri", v.URI)

			if !production {
				if requestID := GetRequestID(c); requestID != "" {
					e = e.Str("request_id", requestID)
				}
				e = e.
					Str("host", v.Host).
					Str("ip", c.RealIP()).
					Str("user_agent", c.Request().UserAgent())
			}

			e.Msg("API")
			return nil
		},
	})
}

// statusFromError predicts the status GlobalErrorHandler will answer with.
func statusFromError(err error) int {
	var httpErr *errs.HTTPError
	var echoErr *echo.HTTPError

	switch {
	case errors.As(err, &httpErr):
		return httpErr.Status
	case errors.As(err, &echoErr):
		return echoErr.Code
	default:
		return http.StatusInternalServerError
	}
}

// Recover turns panics into errors handled by GlobalErrorHandler.
func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.Recover()
}

// Secure sets the standard security headers.
func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.Secure()
}

// GlobalErrorHandler is the final error funnel for the HTTP server.
//
//   - *errs.HTTPError: written as JSON, or as text when Plain is set.
//   - *echo.HTTPError: route 404 becomes "Route not found"; others keep
//     their status.
//   - anything else is a storage error: 500 with a generic body in
//     production and the raw error plus its classification elsewhere.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	originalErr := err

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			httpErr = fromEchoError(echoErr)
		} else {
			err = sqlerr.HandleError(err)
			errors.As(err, &httpErr)
		}
	}

	logger := GetLogger(c)

	if httpErr != nil {
		event := logger.Warn()
		if httpErr.Status >= http.StatusInternalServerError {
			event = logger.Error().Stack()
		}
		event.
			Err(errors.WithStack(originalErr)).
			Int("status", httpErr.Status).
			Str("error_code", httpErr.Code).
			Msg(httpErr.Message)

		if !c.Response().Committed {
			_ = writeHTTPError(c, httpErr)
		}
		return
	}

	var storageErr *sqlerr.Error
	if !errors.As(err, &storageErr) {
		storageErr = &sqlerr.Error{Code: sqlerr.Other, Message: err.Error()}
	}

	logger.Error().Stack().
		Err(errors.WithStack(originalErr)).
		Int("status", http.StatusInternalServerError).
		Str("error_code", storageErr.AppCode).
		Str("sql_state", storageErr.DatabaseCode).
		Msg(storageErr.UserMessage)

	if c.Response().Committed {
		return
	}

	if global.server.Config.Primary.IsProduction() {
		_ = c.JSON(http.StatusInternalServerError, echo.Map{
			"error": echo.Map{"message": "server error"},
		})
		return
	}

	_ = c.JSON(http.StatusInternalServerError, echo.Map{
		"message": originalErr.Error(),
		"error":   storageErr,
	})
}

func fromEchoError(echoErr *echo.HTTPError) *errs.HTTPError {
	if echoErr.Code == http.StatusNotFound {
		return errs.NewNotFoundError("Route not found", false, nil)
	}

	message, ok := echoErr.Message.(string)
	if !ok {
		message = http.StatusText(echoErr.Code)
	}

	return &errs.HTTPError{
		Code:    errs.MakeUpperCaseWithUnderscores(http.StatusText(echoErr.Code)),
		Message: message,
		Status:  echoErr.Code,
	}
}

func writeHTTPError(c echo.Context, httpErr *errs.HTTPError) error {
	if c.Request().Method == http.MethodHead {
		return c.NoContent(httpErr.Status)
	}

	if !httpErr.Plain {
		return c.JSON(httpErr.Status, httpErr)
	}

	if httpErr.Message == "" {
		return c.NoContent(httpErr.Status)
	}
	return c.String(httpErr.Status, httpErr.Message)
}
