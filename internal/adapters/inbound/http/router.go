package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/ramisettybhargavi/devsecops-backend/internal/adapters/inbound/http/handlers"
	"github.com/ramisettybhargavi/devsecops-backend/internal/adapters/inbound/http/middleware"
	"github.com/ramisettybhargavi/devsecops-backend/internal/config"
	"github.com/ramisettybhargavi/devsecops-backend/internal/usecases"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/logger"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/metrics"
	"github.com/throttled/throttled/v2"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type RouterConfig struct {
	App            *usecases.Application
	Logger         logger.Logger
	MetricsClient  metrics.Client
	TracerProvider otelTrace.TracerProvider
	RateLimitStore throttled.GCRAStoreCtx
	Config         *config.ServiceConfig
}

func NewRouter(cfg RouterConfig) http.Handler {
	router := chi.NewRouter()

	// Core middlewares - always applied
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestTracking(cfg.Config.Correlation.HeaderName))
	router.Use(middleware.Recovery(cfg.Logger))
	router.Use(chimiddleware.Timeout(cfg.Config.HTTPServer.WriteTimeout))
	router.Use(middleware.SecurityHeaders(cfg.Config.App.APIVersion))
	router.Use(middleware.CORS([]string{"*"}))

	// Tracing middleware
	if cfg.Config.Telemetry.Traces.Enabled {
		router.Use(middleware.Tracer(cfg.TracerProvider))
		cfg.Logger.Info().Msg("distributed tracing enabled")
	}

	// Metrics middleware
	if cfg.Config.Telemetry.Metrics.Enabled {
		metricsMiddleware := middleware.NewMetricsMiddleware(cfg.MetricsClient)
		router.Use(metricsMiddleware.Middleware)
		cfg.Logger.Info().Msg("HTTP metrics collection enabled")
	}

	// Access logging with health check filtering
	if cfg.Config.Logging.AccessLog.Enabled {
		healthFilter := middleware.NewHealthCheckFilter(cfg.Config.Logging.AccessLog.LogHealthChecks)
		accessLogger := middleware.AccessLogger(cfg.Logger, cfg.Config.Logging.AccessLog.IncludeQueryParams)

		router.Use(healthFilter.Middleware)
		router.Use(accessLogger)
		cfg.Logger.Info().
			Bool("log_health_checks", cfg.Config.Logging.AccessLog.LogHealthChecks).
			Msg("structured access logging enabled")
	}

	if cfg.Config.ThrottledRateLimiting.Enabled && cfg.RateLimitStore != nil {
		router.Use(middleware.ThrottledRateLimitingMiddleware(
			cfg.Config.ThrottledRateLimiting,
			cfg.RateLimitStore,
			cfg.Logger,
		))
		cfg.Logger.Info().
			Uint("requests_per_second", cfg.Config.ThrottledRateLimiting.RequestsPerSecond).
			Msg("rate limiting enabled")
	}

	healthHandler := handlers.NewHealthHandler(cfg.App, cfg.Config.App)
	usersHandler := handlers.NewUsersHandler(cfg.App)

	router.Get("/health", healthHandler.HealthCheck)
	router.Get("/observability/status", healthHandler.ObservabilityStatus)

	if cfg.Config.Telemetry.Metrics.Enabled {
		router.Method(http.MethodGet, "/metrics", cfg.MetricsClient.Handler())
	}

	router.Route("/api/users", func(r chi.Router) {
		r.Get("/", usersHandler.ListUsers)
		r.Post("/", usersHandler.CreateUser)
		r.Get("/{id}", usersHandler.GetUser)
		r.Put("/{id}", usersHandler.UpdateUser)
		r.Delete("/{id}", usersHandler.DeleteUser)
	})

	return router
}
