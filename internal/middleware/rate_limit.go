package middleware

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/deppfellow/bookmarks-api/internal/config"
	"github.com/deppfellow/bookmarks-api/internal/errs"
	"github.com/deppfellow/bookmarks-api/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// tokenBucketScript refills and takes one token atomically.
// KEYS[1] bucket key; ARGV: now_ms, capacity, refill_tokens, interval_ms, ttl_s.
// Returns {allowed, remaining, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill_tokens = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl_seconds = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil or last_refill == nil then
	tokens = capacity
	last_refill = now_ms
end

if interval_ms > 0 and refill_tokens > 0 then
	local elapsed = math.max(0, now_ms - last_refill)
	local intervals = math.floor(elapsed / interval_ms)
	if intervals > 0 then
		tokens = math.min(capacity, tokens + (intervals * refill_tokens))
		last_refill = last_refill + (intervals * interval_ms)
	end
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
	allowed = 1
	tokens = tokens - 1
else
	retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)

return { allowed, tokens, retry_after_ms }
`)

// RateLimitMiddleware enforces a token bucket per client ip and route.
// Buckets live in Redis when the server has a client, in process memory
// otherwise.
type RateLimitMiddleware struct {
	server *server.Server
}

func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		server: s,
	}
}

// Limit returns the limiting middleware, or a pass-through when rate
// limiting is disabled.
func (r *RateLimitMiddleware) Limit() echo.MiddlewareFunc {
	cfg := r.server.Config.RateLimit
	if !cfg.IsEnabled() {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	if r.server.Redis == nil {
		r.server.Logger.Warn().Msg("redis unavailable, using in-memory rate limiter")
		return r.memoryLimiter(cfg)
	}
	return r.redisLimiter(cfg, r.server.Redis)
}

func (r *RateLimitMiddleware) redisLimiter(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	ttlSeconds := int64(math.Ceil(cfg.TTL().Seconds()))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := RateLimitKey(cfg.Prefix, c)

			vals, err := tokenBucketScript.Run(c.Request().Context(), rdb, []string{key},
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				ttlSeconds,
			).Int64Slice()
			if err != nil || len(vals) != 3 {
				// Fail open: an unreachable limiter must not take the API down.
				GetLogger(c).Warn().Err(err).Str("key", key).Msg("rate limiter unavailable")
				return next(c)
			}

			allowed, remaining, retryMs := vals[0] == 1, vals[1], vals[2]

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if !allowed {
				secs := int64(math.Ceil(float64(retryMs) / 1000.0))
				c.Response().Header().Set("Retry-After", strconv.FormatInt(secs, 10))
				return r.deny(c)
			}

			return next(c)
		}
	}
}

func (r *RateLimitMiddleware) memoryLimiter(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(cfg.RefillTokens) / cfg.RefillInterval.Seconds()),
		Burst:     cfg.Capacity,
		ExpiresIn: cfg.TTL(),
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return RateLimitKey(cfg.Prefix, c), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			return r.deny(c)
		},
	})
}

func (r *RateLimitMiddleware) deny(c echo.Context) error {
	r.RecordRateLimitHit(c.Request().Method + " " + c.Path())
	return errs.NewTooManyRequestsError("rate limit exceeded")
}

// RecordRateLimitHit records a RateLimitHit custom event when APM is on.
func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	if r.server.LoggerService != nil && r.server.LoggerService.GetApplication() != nil {
		r.server.LoggerService.GetApplication().RecordCustomEvent("RateLimitHit", map[string]interface{}{
			"endpoint": endpoint,
		})
	}
}

// RateLimitKey identifies a bucket: <prefix>:ip:<client ip>:route:<method> <route>.
func RateLimitKey(prefix string, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	route := fmt.Sprintf("%s %s", c.Request().Method, c.Path())
	return strings.Join([]string{prefix, "ip", ip, "route", route}, ":")
}
