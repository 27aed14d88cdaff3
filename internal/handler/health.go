package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/deppfellow/bookmarks-api/internal/config"
	"github.com/deppfellow/bookmarks-api/internal/middleware"
	"github.com/deppfellow/bookmarks-api/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

var (
	errDatabaseNotConfigured = errors.New("database not configured")
	errRedisNotConfigured    = errors.New("redis not configured")
)

// HealthHandler reports whether the service and its dependencies are
// reachable. The database is required. Redis only backs the rate limiter,
// so a Redis failure is reported without failing the check.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// HealthCheck is the result of a single dependency probe.
type HealthCheck struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

// HealthResponse is the body of GET /status.
type HealthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]HealthCheck `json:"checks"`
}

// CheckHealth probes the dependencies named in the health check config
// within its timeout. It answers 503 when the database check fails and 200
// otherwise. With checks disabled it answers 200 without probing anything.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	response := HealthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Environment: h.server.Config.Primary.Env,
		Checks:      make(map[string]HealthCheck),
	}

	checks := h.healthChecksConfig()
	if !checks.IsEnabled() {
		return c.JSON(http.StatusOK, response)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), checks.Timeout)
	defer cancel()

	if checks.Has("database") {
		dbCheck := h.probe(ctx, &logger, "database", func(ctx context.Context) error {
			if h.server.DB == nil {
				return errDatabaseNotConfigured
			}
			return h.server.DB.Pool.Ping(ctx)
		})
		response.Checks["database"] = dbCheck

		if dbCheck.Status != "healthy" {
			response.Status = "unhealthy"
		}
	}

	if checks.Has("redis") {
		response.Checks["redis"] = h.probe(ctx, &logger, "redis", func(ctx context.Context) error {
			if h.server.Redis == nil {
				return errRedisNotConfigured
			}
			return h.server.Redis.Ping(ctx).Err()
		})
	}

	if response.Status != "healthy" {
		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		h.recordHealthError(map[string]interface{}{
			"check_type":        "overall",
			"operation":         "health_check",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	return c.JSON(http.StatusOK, response)
}

func (h *HealthHandler) healthChecksConfig() config.HealthChecksConfig {
	def := config.DefaultObservabilityConfig().HealthChecks
	obs := h.server.Config.Observability
	if obs == nil {
		return def
	}

	checks := obs.HealthChecks
	if checks.Timeout <= 0 {
		checks.Timeout = def.Timeout
	}
	return checks
}

func (h *HealthHandler) probe(ctx context.Context, logger *zerolog.Logger, name string, ping func(context.Context) error) HealthCheck {
	probeStart := time.Now()
	err := ping(ctx)
	elapsed := time.Since(probeStart)

	if err != nil {
		logger.Error().
			Err(err).
			Dur("response_time", elapsed).
			Msgf("%s health check failed", name)

		h.recordHealthError(map[string]interface{}{
			"check_type":       name,
			"operation":        "health_check",
			"error_type":       name + "_unhealthy",
			"response_time_ms": elapsed.Milliseconds(),
			"error_message":    err.Error(),
		})

		return HealthCheck{
			Status:       "unhealthy",
			ResponseTime: elapsed.String(),
			Error:        err.Error(),
		}
	}

	return HealthCheck{
		Status:       "healthy",
		ResponseTime: elapsed.String(),
	}
}

func (h *HealthHandler) recordHealthError(attrs map[string]interface{}) {
	if app := h.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("HealthCheckError", attrs)
	}
}
