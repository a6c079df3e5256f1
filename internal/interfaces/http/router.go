// Package http exposes the extraction pipeline over a gin HTTP API.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/OpinionGraph/internal/application/extraction"
	"github.com/turtacn/OpinionGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/OpinionGraph/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/OpinionGraph/internal/interfaces/http/handlers"
	"github.com/turtacn/OpinionGraph/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the dependencies of the route tree.  Optional
// fields left nil disable the routes that need them.
type RouterConfig struct {
	Service  extraction.Service
	Checkers []handlers.HealthChecker

	// Jobs and JobTopic enable POST /api/v1/jobs.
	Jobs     extraction.EventPublisher
	JobTopic string

	// Reports enables GET /api/v1/reports/:job/:run.
	Reports handlers.ReportLoader

	Collector   prometheus.MetricsCollector
	Metrics     *prometheus.AppMetrics
	MetricsPath string

	CORSOrigins []string
	MaxBodySize int64
	Version     string
	Logger      logging.Logger
}

// HealthCheckers widens a slice of any checker type to the router's.
func HealthCheckers[T handlers.HealthChecker](in []T) []handlers.HealthChecker {
	out := make([]handlers.HealthChecker, len(in))
	for i, c := range in {
		out[i] = c
	}
	return out
}

// NewRouter constructs the complete route tree.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true

	// --- Global middleware ---
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	if len(cfg.CORSOrigins) > 0 {
		cors := middleware.DefaultCORSConfig()
		cors.AllowedOrigins = cfg.CORSOrigins
		cors.AllowWildcard = true
		r.Use(middleware.CORS(cors))
	}
	r.Use(middleware.RequestLogging(cfg.Logger.Named("http"), cfg.Metrics, middleware.DefaultLoggingConfig()))

	// --- Probes and metrics ---
	handlers.NewHealthHandler(cfg.Version, cfg.Metrics, cfg.Checkers...).RegisterRoutes(r)
	if cfg.Collector != nil {
		r.GET(cfg.MetricsPath, gin.WrapH(cfg.Collector.Handler()))
	}

	// --- API v1 ---
	api := r.Group("/api/v1", middleware.MaxBodySize(cfg.MaxBodySize))
	if cfg.Service != nil {
		handlers.NewExtractionHandler(cfg.Service, cfg.Logger).RegisterRoutes(api)
	}
	handlers.NewJobHandler(cfg.Jobs, cfg.JobTopic, cfg.Reports, cfg.Logger).RegisterRoutes(api)

	return r
}

//Personal.AI order the ending
