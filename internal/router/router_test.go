package router_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/deppfellow/bookmarks-api/internal/config"
	"github.com/deppfellow/bookmarks-api/internal/handler"
	"github.com/deppfellow/bookmarks-api/internal/model"
	"github.com/deppfellow/bookmarks-api/internal/router"
	"github.com/deppfellow/bookmarks-api/internal/server"
	"github.com/deppfellow/bookmarks-api/internal/service"
	"github.com/deppfellow/bookmarks-api/internal/service/servicetest"
	"github.com/deppfellow/bookmarks-api/internal/sqlerr"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixtures = []model.Bookmark{
	{ID: 1, Title: "Google", URL: "https://www.google.com", Description: "Search engine", Rating: "5"},
	{ID: 2, Title: "Go", URL: "https://go.dev", Description: "The Go language", Rating: "4"},
	{ID: 3, Title: "Echo", URL: "https://echo.labstack.com", Description: "", Rating: "3"},
}

var maliciousBookmark = model.Bookmark{
	ID:          911,
	Title:       `Naughty naughty very naughty <script>alert("xss");</script>`,
	URL:         "https://www.hackers.com",
	Description: `Bad image <img src="https://url.to.file.which/does-not.exist" onerror="alert(document.cookie);">. But not <strong>all</strong> bad.`,
	Rating:      "1",
}

type testApp struct {
	echo  *echo.Echo
	store *servicetest.Store
}

func newTestApp(t *testing.T, env string, seed ...model.Bookmark) *testApp {
	t.Helper()
	return newTestAppWith(t, env, nil, seed...)
}

// newTestAppWith is newTestApp with a hook to adjust the config before the
// router is built.
func newTestAppWith(t *testing.T, env string, configure func(*config.Config), seed ...model.Bookmark) *testApp {
	t.Helper()

	disabled := false
	cfg := &config.Config{
		Primary: config.Primary{Env: env},
		Server:  config.ServerConfig{CORSAllowedOrigins: []string{"*"}},
		RateLimit: config.RateLimitConfig{
			Enabled: &disabled,
		},
	}
	if configure != nil {
		configure(cfg)
	}

	logger := zerolog.Nop()
	s := &server.Server{Config: cfg, Logger: &logger}

	store := servicetest.NewStore(seed...)
	services := &service.Services{
		Bookmarks: service.NewBookmarkService(store, cfg.Sanitize),
	}

	return &testApp{
		echo:  router.NewRouter(s, handler.NewHandlers(s, services)),
		store: store,
	}
}

func (a *testApp) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestRoot(t *testing.T) {
	app := newTestApp(t, "test")

	rec := app.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello, world!", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestListBookmarks(t *testing.T) {
	t.Run("empty store returns an empty array", func(t *testing.T) {
		app := newTestApp(t, "test")

		rec := app.do(http.MethodGet, "/bookmarks", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("returns every bookmark", func(t *testing.T) {
		app := newTestApp(t, "test", fixtures...)

		rec := app.do(http.MethodGet, "/bookmarks", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, fixtures, decode[[]model.Bookmark](t, rec))
	})

	t.Run("values are returned unsanitized", func(t *testing.T) {
		app := newTestApp(t, "test", maliciousBookmark)

		rec := app.do(http.MethodGet, "/bookmarks", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []model.Bookmark{maliciousBookmark}, decode[[]model.Bookmark](t, rec))
	})
}

func TestGetBookmark(t *testing.T) {
	app := newTestApp(t, "test", append(fixtures, maliciousBookmark)...)

	t.Run("found", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/bookmarks/2", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, fixtures[1], decode[model.Bookmark](t, rec))
	})

	t.Run("unknown id", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/bookmarks/123456", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Bookmark Not Found", rec.Body.String())
	})

	t.Run("non numeric id", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/bookmarks/abc", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Bookmark Not Found", rec.Body.String())
	})

	t.Run("removes XSS attack content", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/bookmarks/911", "")
		assert.Equal(t, http.StatusOK, rec.Code)

		got := decode[model.Bookmark](t, rec)
		assert.Equal(t, `Naughty naughty very naughty &lt;script&gt;alert("xss");&lt;/script&gt;`, got.Title)
		assert.Equal(t, `Bad image <img src="https://url.to.file.which/does-not.exist">. But not <strong>all</strong> bad.`, got.Description)
	})
}

func TestCreateBookmark(t *testing.T) {
	t.Run("creates and can be fetched", func(t *testing.T) {
		app := newTestApp(t, "test")

		rec := app.do(http.MethodPost, "/bookmarks",
			`{"title":"Test new bookmark","url":"https://test.com","description":"Test description","rating":"5"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		created := decode[model.Bookmark](t, rec)
		assert.Equal(t, int64(1), created.ID)
		assert.Equal(t, "Test new bookmark", created.Title)
		assert.Equal(t, "https://test.com", created.URL)
		assert.Equal(t, "Test description", created.Description)
		assert.Equal(t, "5", created.Rating)
		assert.Equal(t, "/bookmarks/1", rec.Header().Get(echo.HeaderLocation))

		rec = app.do(http.MethodGet, "/bookmarks/1", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, created, decode[model.Bookmark](t, rec))
	})

	t.Run("empty values are accepted", func(t *testing.T) {
		app := newTestApp(t, "test")

		rec := app.do(http.MethodPost, "/bookmarks", `{"title":"","url":"","description":"","rating":""}`)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("numeric rating is kept as text", func(t *testing.T) {
		app := newTestApp(t, "test")

		rec := app.do(http.MethodPost, "/bookmarks", `{"title":"a","url":"b","description":"c","rating":3}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "3", decode[model.Bookmark](t, rec).Rating)
	})

	t.Run("stored unsanitized", func(t *testing.T) {
		app := newTestApp(t, "test")

		body, err := json.Marshal(map[string]string{
			"title":       maliciousBookmark.Title,
			"url":         maliciousBookmark.URL,
			"description": maliciousBookmark.Description,
			"rating":      maliciousBookmark.Rating,
		})
		require.NoError(t, err)

		rec := app.do(http.MethodPost, "/bookmarks", string(body))
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, maliciousBookmark.Title, decode[model.Bookmark](t, rec).Title)
	})

	missing := []struct {
		name string
		body string
		want string
	}{
		{name: "title", body: `{"url":"u","description":"d","rating":"1"}`, want: "title are required."},
		{name: "url", body: `{"title":"t","description":"d","rating":"1"}`, want: "url are required."},
		{name: "description", body: `{"title":"t","url":"u","rating":"1"}`, want: "description are required."},
		{name: "rating", body: `{"title":"t","url":"u","description":"d"}`, want: "rating are required."},
		{name: "several", body: `{"url":"u"}`, want: "title, description, rating are required."},
		{name: "all", body: `{}`, want: "title, url, description, rating are required."},
		{name: "no body", body: "", want: "title, url, description, rating are required."},
	}

	for _, tt := range missing {
		t.Run("missing "+tt.name, func(t *testing.T) {
			app := newTestApp(t, "test")

			rec := app.do(http.MethodPost, "/bookmarks", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, rec.Body.String())

			list, err := app.store.ListBookmarks(t.Context())
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}

	t.Run("malformed JSON", func(t *testing.T) {
		app := newTestApp(t, "test")

		rec := app.do(http.MethodPost, "/bookmarks", `{"title":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
	})

	t.Run("object values rejected", func(t *testing.T) {
		app := newTestApp(t, "test")

		rec := app.do(http.MethodPost, "/bookmarks", `{"title":{"a":1},"url":"u","description":"d","rating":"1"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDeleteBookmark(t *testing.T) {
	app := newTestApp(t, "test", fixtures...)

	rec := app.do(http.MethodDelete, "/bookmarks/2", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = app.do(http.MethodGet, "/bookmarks/2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(http.MethodGet, "/bookmarks", "")
	assert.Equal(t, []model.Bookmark{fixtures[0], fixtures[2]}, decode[[]model.Bookmark](t, rec))

	rec = app.do(http.MethodDelete, "/bookmarks/2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Bookmark does not exist", rec.Body.String())

	rec = app.do(http.MethodDelete, "/bookmarks/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Bookmark does not exist", rec.Body.String())
}

func TestUpdateBookmark(t *testing.T) {
	t.Run("unknown id is 404 without body", func(t *testing.T) {
		app := newTestApp(t, "test", fixtures...)

		rec := app.do(http.MethodPatch, "/bookmarks/123456", `{"title":"x"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, rec.Body.String())

		rec = app.do(http.MethodPatch, "/bookmarks/123456", `{}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("no usable field", func(t *testing.T) {
		app := newTestApp(t, "test", fixtures...)

		for _, body := range []string{`{}`, `{"irrelevantField":"foo"}`, `{"title":"","rating":0}`} {
			rec := app.do(http.MethodPatch, "/bookmarks/2", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, body)
			assert.Equal(t, "title, url, description, rating are required.", rec.Body.String(), body)
		}
	})

	t.Run("updates the given fields only", func(t *testing.T) {
		app := newTestApp(t, "test", fixtures...)

		rec := app.do(http.MethodPatch, "/bookmarks/2", `{"title":"updated title","fieldToIgnore":"x"}`)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())

		rec = app.do(http.MethodGet, "/bookmarks/2", "")
		want := fixtures[1]
		want.Title = "updated title"
		assert.Equal(t, want, decode[model.Bookmark](t, rec))
	})

	t.Run("all fields", func(t *testing.T) {
		app := newTestApp(t, "test", fixtures...)

		rec := app.do(http.MethodPatch, "/bookmarks/2",
			`{"title":"t","url":"https://u.example","description":"d","rating":"2"}`)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = app.do(http.MethodGet, "/bookmarks/2", "")
		assert.Equal(t, model.Bookmark{ID: 2, Title: "t", URL: "https://u.example", Description: "d", Rating: "2"},
			decode[model.Bookmark](t, rec))
	})
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t, "test")

	rec := app.do(http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Route not found")
}

func TestStorageErrors(t *testing.T) {
	storeErr := &sqlerr.Error{
		Code:         sqlerr.ConnectionFailure,
		Message:      "failed to connect to database",
		DatabaseCode: "08006",
		AppCode:      "RECORD_UNAVAILABLE",
	}

	t.Run("development exposes the error", func(t *testing.T) {
		app := newTestApp(t, "development", fixtures...)
		app.store.Err = storeErr

		rec := app.do(http.MethodGet, "/bookmarks", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)

		body := decode[map[string]any](t, rec)
		assert.Equal(t, storeErr.Error(), body["message"])
		require.IsType(t, map[string]any{}, body["error"])
		assert.Equal(t, "connection_failure", body["error"].(map[string]any)["code"])
	})

	t.Run("production hides the error", func(t *testing.T) {
		app := newTestApp(t, "production", fixtures...)
		app.store.Err = storeErr

		rec := app.do(http.MethodGet, "/bookmarks/1", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":{"message":"server error"}}`, rec.Body.String())
	})

	t.Run("unclassified errors are storage errors", func(t *testing.T) {
		app := newTestApp(t, "production", fixtures...)
		app.store.Err = errors.New("boom")

		rec := app.do(http.MethodDelete, "/bookmarks/1", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":{"message":"server error"}}`, rec.Body.String())
	})
}

func TestNullFieldsReachStorage(t *testing.T) {
	t.Run("create with null title", func(t *testing.T) {
		app := newTestApp(t, "development")

		rec := app.do(http.MethodPost, "/bookmarks", `{"title":null,"url":"u","description":"d","rating":"1"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)

		body := decode[map[string]any](t, rec)
		require.IsType(t, map[string]any{}, body["error"])
		storageErr := body["error"].(map[string]any)
		assert.Equal(t, "not_null_violation", storageErr["code"])
		assert.Equal(t, "BOOKMARK_REQUIRED", storageErr["app_code"])

		list := decode[[]model.Bookmark](t, app.do(http.MethodGet, "/bookmarks", ""))
		assert.Empty(t, list)
	})

	t.Run("create with null in production", func(t *testing.T) {
		app := newTestApp(t, "production")

		rec := app.do(http.MethodPost, "/bookmarks", `{"title":"t","url":"u","description":"d","rating":null}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":{"message":"server error"}}`, rec.Body.String())
	})

	t.Run("update with null next to a truthy field", func(t *testing.T) {
		app := newTestApp(t, "production", fixtures...)

		rec := app.do(http.MethodPatch, "/bookmarks/1", `{"title":"X","url":null}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)

		got := decode[model.Bookmark](t, app.do(http.MethodGet, "/bookmarks/1", ""))
		assert.Equal(t, fixtures[0].URL, got.URL)
		assert.NotEqual(t, "X", got.Title)
	})

	t.Run("lone null update is rejected before storage", func(t *testing.T) {
		app := newTestApp(t, "production", fixtures...)

		rec := app.do(http.MethodPatch, "/bookmarks/1", `{"url":null}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "title, url, description, rating are required.", rec.Body.String())
	})
}

func TestHealthWithoutDatabase(t *testing.T) {
	app := newTestApp(t, "test")

	rec := app.do(http.MethodGet, "/status", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	body := decode[handler.HealthResponse](t, rec)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "unhealthy", body.Checks["database"].Status)
	assert.WithinDuration(t, time.Now().UTC(), body.Timestamp, time.Minute)
	assert.Equal(t, "unhealthy", body.Checks["redis"].Status)
}

func TestHealthFollowsConfig(t *testing.T) {
	withChecks := func(hc config.HealthChecksConfig) func(*config.Config) {
		return func(cfg *config.Config) {
			obs := config.DefaultObservabilityConfig()
			obs.HealthChecks = hc
			cfg.Observability = obs
		}
	}

	t.Run("disabled checks probe nothing", func(t *testing.T) {
		disabled := false
		app := newTestAppWith(t, "test", withChecks(config.HealthChecksConfig{
			Enabled: &disabled,
			Timeout: time.Nanosecond,
		}))

		rec := app.do(http.MethodGet, "/status", "")
		assert.Equal(t, http.StatusOK, rec.Code)

		body := decode[handler.HealthResponse](t, rec)
		assert.Equal(t, "healthy", body.Status)
		assert.Empty(t, body.Checks)
	})

	t.Run("only listed checks run", func(t *testing.T) {
		app := newTestAppWith(t, "test", withChecks(config.HealthChecksConfig{
			Timeout: time.Second,
			Checks:  []string{"redis"},
		}))

		rec := app.do(http.MethodGet, "/status", "")
		assert.Equal(t, http.StatusOK, rec.Code)

		body := decode[handler.HealthResponse](t, rec)
		assert.Equal(t, "healthy", body.Status)
		assert.NotContains(t, body.Checks, "database")
		assert.Equal(t, "unhealthy", body.Checks["redis"].Status)
	})

	t.Run("database check decides the status", func(t *testing.T) {
		app := newTestAppWith(t, "test", withChecks(config.HealthChecksConfig{
			Timeout: time.Second,
			Checks:  []string{"database"},
		}))

		rec := app.do(http.MethodGet, "/status", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		body := decode[handler.HealthResponse](t, rec)
		assert.Len(t, body.Checks, 1)
		assert.Equal(t, "database not configured", body.Checks["database"].Error)
	})
}
