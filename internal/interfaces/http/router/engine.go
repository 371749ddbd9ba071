package router

import (
	"fmt"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/logger"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/interfaces/http/handler"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// HealthPath is served outside the versioned API and without auth
const HealthPath = "/health"

// EngineConfig wires the middleware chain
type EngineConfig struct {
	Logger         *zap.Logger
	ServiceName    string
	TracingEnabled bool
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	TrustedProxies []string
	Auth           middleware.AuthConfig

	// Meter enables HTTP metrics when set
	Meter metric.Meter

	// RateLimiter enables per-owner rate limiting when set
	RateLimiter *middleware.RateLimiter
}

// NewEngine builds the gin engine with the middleware chain, the health
// endpoint and all API routes.
//
// Order: Recovery, RequestID, request logging, tracing, metrics, security
// headers, CORS, body limit. API routes then authenticate the owner,
// enrich the span and apply the rate limit.
func NewEngine(cfg EngineConfig, health *handler.HealthHandler, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(cfg.ServiceName, cfg.TracingEnabled))
	if cfg.Meter != nil {
		httpMetrics, err := middleware.HTTPMetrics(cfg.Meter)
		if err != nil {
			return nil, err
		}
		engine.Use(httpMetrics)
	}
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(cfg.CORS))
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}

	engine.GET(HealthPath, health.Health)

	auth := cfg.Auth
	if auth.Logger == nil {
		auth.Logger = log
	}
	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Use(middleware.OwnerAuth(auth), middleware.SpanEnricher())
	if cfg.RateLimiter != nil {
		r.Use(middleware.RateLimit(cfg.RateLimiter))
	}
	r.Register(Routes(h)...)
	r.Setup()

	return engine, nil
}
