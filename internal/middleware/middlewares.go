package middleware

import (
	"github.com/deppfellow/bookmarks-api/internal/server"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Middlewares groups every middleware component used by the HTTP server so
// the router receives them as one value.
type Middlewares struct {
	// Global holds CORS, request logging, recovery, secure headers and the
	// global error handler.
	Global *GlobalMiddlewares

	// ContextEnhancer attaches a request-scoped logger.
	ContextEnhancer *ContextEnhancer

	// Tracing installs New Relic transactions and custom attributes.
	Tracing *TracingMiddleware

	// RateLimit enforces the per-client token bucket.
	RateLimit *RateLimitMiddleware
}

// NewMiddlewares constructs all middleware components. Without a New Relic
// application the tracing middleware degrades into a no-op.
func NewMiddlewares(s *server.Server) *Middlewares {
	var nrApp *newrelic.Application
	if s.LoggerService != nil {
		nrApp = s.LoggerService.GetApplication()
	}

	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, nrApp),
		RateLimit:       NewRateLimitMiddleware(s),
	}
}
