package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/deppfellow/bookmarks-api/internal/config"
	"github.com/deppfellow/bookmarks-api/internal/errs"
	"github.com/deppfellow/bookmarks-api/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(env string, rl config.RateLimitConfig) *server.Server {
	logger := zerolog.Nop()
	return &server.Server{
		Config: &config.Config{
			Primary:   config.Primary{Env: env},
			RateLimit: rl,
		},
		Logger: &logger,
	}
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	var seen string
	e.GET("/", func(c echo.Context) error {
		seen = GetRequestID(c)
		return c.NoContent(http.StatusOK)
	}, RequestID())

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Len(t, seen, 36)
		assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	})
}

func TestGetLoggerWithoutEnhancer(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.NotNil(t, GetLogger(c))
}

func TestRateLimitKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/bookmarks/1", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.7")
	c := echo.New().NewContext(req, httptest.NewRecorder())
	c.SetPath("/bookmarks/:id")

	assert.Equal(t, "rl:ip:10.0.0.7:route:GET /bookmarks/:id", RateLimitKey("rl", c))
}

func TestRateLimit_MemoryFallback(t *testing.T) {
	s := testServer("test", config.RateLimitConfig{
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		Prefix:         "rl",
	})

	e := echo.New()
	e.HTTPErrorHandler = NewGlobalMiddlewares(s).GlobalErrorHandler
	e.Use(NewRateLimitMiddleware(s).Limit())
	e.GET("/bookmarks", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	call := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/bookmarks", nil)
		req.Header.Set(echo.HeaderXRealIP, "10.0.0.8")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, call().Code)
	assert.Equal(t, http.StatusOK, call().Code)

	rec := call()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate limit exceeded")
}

func TestRateLimit_Disabled(t *testing.T) {
	disabled := false
	s := testServer("test", config.RateLimitConfig{Enabled: &disabled})

	e := echo.New()
	e.Use(NewRateLimitMiddleware(s).Limit())
	e.GET("/", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	for range 5 {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestGlobalErrorHandler(t *testing.T) {
	serve := func(env string, err error) *httptest.ResponseRecorder {
		s := testServer(env, config.RateLimitConfig{})
		e := echo.New()
		e.HTTPErrorHandler = NewGlobalMiddlewares(s).GlobalErrorHandler
		e.GET("/", func(c echo.Context) error { return err })

		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		return rec
	}

	t.Run("plain text", func(t *testing.T) {
		rec := serve("test", errs.NewPlainError(http.StatusNotFound, "Bookmark Not Found"))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Bookmark Not Found", rec.Body.String())
		assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMETextPlain)
	})

	t.Run("plain without message", func(t *testing.T) {
		rec := serve("test", errs.NewPlainError(http.StatusNotFound, ""))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("json", func(t *testing.T) {
		rec := serve("test", errs.NewBadRequestError("Validation failed", true, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"code":"BAD_REQUEST","message":"Validation failed","status":400,"override":true}`, rec.Body.String())
	})

	t.Run("echo errors keep their status", func(t *testing.T) {
		rec := serve("test", echo.ErrMethodNotAllowed)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("storage error in production", func(t *testing.T) {
		rec := serve("production", assert.AnError)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":{"message":"server error"}}`, rec.Body.String())
	})

	t.Run("storage error in development", func(t *testing.T) {
		rec := serve("development", assert.AnError)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), `"message":"`+assert.AnError.Error()+`"`)
		assert.Contains(t, rec.Body.String(), `"code":"other"`)
	})
}
