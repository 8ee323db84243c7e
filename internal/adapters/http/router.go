package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotify/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotify/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotify/internal/platform/telemetry"
)

// DefaultRequestTimeout bounds /api/v1 requests when none is configured.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig contains what SetupRouter wires.
type RouterConfig struct {
	Logger      *slog.Logger
	ServiceName string

	HealthHandler *handlers.HealthHandler
	QuoteHandler  *handlers.QuoteHandler

	// Timeout applies to /api/v1 only; zero disables it.
	Timeout time.Duration
}

// SetupRouter installs the middleware chain and routes on engine.
//
// Middleware order: recovery, context logger, request ID, correlation ID,
// tracing, HTTP metrics, request logging. Probes under /-/ have no timeout.
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(),
		middleware.ContextLogger(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.TracingMiddleware(cfg.ServiceName),
		telemetry.Middleware(),
		middleware.Logging(),
	)

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.Register(engine)
	}

	api := engine.Group("/api/v1")
	if cfg.Timeout > 0 {
		api.Use(middleware.Timeout(cfg.Timeout))
	}

	if cfg.QuoteHandler != nil {
		cfg.QuoteHandler.RegisterQuoteRoutes(api)
	}
}
