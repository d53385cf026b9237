package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	inboundhttp "github.com/ramisettybhargavi/devsecops-backend/internal/adapters/inbound/http"
	"github.com/ramisettybhargavi/devsecops-backend/internal/config"
	"github.com/ramisettybhargavi/devsecops-backend/internal/domain/model"
	"github.com/ramisettybhargavi/devsecops-backend/internal/infrastructure"
	"github.com/ramisettybhargavi/devsecops-backend/internal/usecases"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/healthcheck"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/logger"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/metrics"
	"github.com/stretchr/testify/require"
	"github.com/throttled/throttled/v2/store/memstore"
)

type noopUsersRepo struct{}

func (noopUsersRepo) Create(context.Context, *model.User) error { return nil }
func (noopUsersRepo) FetchByID(context.Context, model.UserID) (*model.User, error) {
	return nil, model.ErrUserNotFound
}

func (noopUsersRepo) List(context.Context, model.UserFilter) (*model.UserList, error) {
	return &model.UserList{Users: []*model.User{}, Pagination: model.Pagination{Page: 1, PerPage: 20}}, nil
}
func (noopUsersRepo) Update(context.Context, *model.User) error  { return nil }
func (noopUsersRepo) Delete(context.Context, model.UserID) error { return nil }

type noopAuditRepo struct{}

func (noopAuditRepo) Record(context.Context, *model.AuditEntry) error { return nil }

type healthyAggregator struct{}

func (healthyAggregator) Aggregate(context.Context) healthcheck.Report {
	return healthcheck.Report{
		Status:    healthcheck.StatusHealthy,
		Timestamp: time.Now().UTC(),
		Dependencies: map[string]healthcheck.DependencyResult{
			"database": {Healthy: true, ResponseTime: time.Millisecond},
			"jaeger":   {Healthy: true, ResponseTime: 2 * time.Millisecond},
		},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.ServiceConfig{}
	cfg.App = config.App{ServiceName: "devsecops-backend", ServiceVersion: "1.0.0", APIVersion: "v1"}
	cfg.HTTPServer.WriteTimeout = 15 * time.Second
	cfg.Correlation.HeaderName = "X-Trace-ID"
	cfg.Telemetry.Metrics.Enabled = true
	cfg.Logging.AccessLog.Enabled = true
	cfg.ThrottledRateLimiting = config.ThrottledRateLimiting{
		Enabled:           true,
		RequestsPerSecond: 100,
		BurstSize:         100,
		EnableIPLimiting:  true,
		SkipPaths:         []string{"/health", "/observability/status", "/metrics"},
		GracefulDegraded:  true,
	}

	metricsClient, err := metrics.NewOTelClient(cfg.App.ServiceName, cfg.App.ServiceVersion)
	require.NoError(t, err)
	t.Cleanup(func() { _ = metricsClient.Shutdown(context.Background()) })

	log := logger.NewTestLogger()
	tracerProvider := infrastructure.NewNoopTracerProvider()

	app := usecases.NewApplication(
		noopUsersRepo{},
		noopAuditRepo{},
		healthyAggregator{},
		healthyAggregator{},
		log,
		metricsClient,
		tracerProvider,
	)

	store, err := memstore.NewCtx(100)
	require.NoError(t, err)

	return inboundhttp.NewRouter(inboundhttp.RouterConfig{
		App:            app,
		Logger:         log,
		MetricsClient:  metricsClient,
		TracerProvider: tracerProvider,
		RateLimitStore: store,
		Config:         cfg,
	})
}

func TestRouter(t *testing.T) {
	t.Parallel()

	t.Run("serves the health endpoint with the correlation id echoed", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(t)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Trace-ID", "abc-123")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "abc-123", rec.Header().Get("X-Trace-ID"))

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "healthy", body["status"])
		require.Equal(t, "abc-123", body["trace_id"])
	})

	t.Run("serves the observability status endpoint", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(t)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/observability/status", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotEmpty(t, rec.Header().Get("X-Trace-ID"))
	})

	t.Run("serves the prometheus scrape endpoint", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(t)

		// Generate some traffic first so counters exist.
		warmup := httptest.NewRecorder()
		router.ServeHTTP(warmup, httptest.NewRequest(http.MethodGet, "/health", nil))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "http_requests_total")
	})

	t.Run("applies the security headers everywhere", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(t)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		require.Equal(t, "v1", rec.Header().Get("API-Version"))
	})

	t.Run("routes the users resource", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(t)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Contains(t, body, "users")
		require.Contains(t, body, "pagination")
	})

	t.Run("unknown routes answer 404", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(t)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}
