package runtime

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ramisettybhargavi/devsecops-backend/internal/config"
	"github.com/ramisettybhargavi/devsecops-backend/internal/ports"
	"github.com/ramisettybhargavi/devsecops-backend/internal/usecases"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/healthcheck"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/logger"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/logship"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/metrics"
	"github.com/throttled/throttled/v2"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	infrastructureDep struct {
		httpServer     *http.Server
		pool           *pgxpool.Pool
		logShipper     *logship.Writer
		logger         logger.Logger
		metricsClient  metrics.Client
		tracerProvider otelTrace.TracerProvider
		rateLimitStore throttled.GCRAStoreCtx
	}

	repositories struct {
		usersRepo   ports.UsersRepository
		auditRepo   ports.AuditRepository
		secretsRepo ports.SecretsRepository
	}

	healthDep struct {
		// healthAggregator covers every dependency including the primary
		// store, observabilityAggregator the observability backends only.
		healthAggregator        *healthcheck.Aggregator
		observabilityAggregator *healthcheck.Aggregator
		poller                  *healthcheck.Poller
	}

	dependencies struct {
		config       *config.ServiceConfig
		configLoader *config.Loader

		infra infrastructureDep

		repos repositories

		health healthDep

		app *usecases.Application

		cleanupFuncs map[string]func(ctx context.Context) error
	}

	DependencyOption func(*dependencies) error
)

func initializeDependencies(ctx context.Context, opts ...DependencyOption) (*dependencies, error) {
	deps := &dependencies{
		cleanupFuncs: make(map[string]func(ctx context.Context) error),
	}

	allOpts := append(defaultOptions(ctx), opts...)

	for _, opt := range allOpts {
		if err := opt(deps); err != nil {
			return nil, fmt.Errorf("failed to apply dependency option: %w", err)
		}
	}

	return deps, nil
}
