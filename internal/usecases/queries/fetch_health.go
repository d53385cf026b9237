package queries

import (
	"context"
	"time"

	"github.com/ramisettybhargavi/devsecops-backend/internal/ports"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/decorator"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/healthcheck"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/logger"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/metrics"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	FetchHealthQuery struct{}

	// HealthResult carries the aggregated dependency report plus how long
	// the service has been up.
	HealthResult struct {
		Report healthcheck.Report
		Uptime time.Duration
	}

	FetchHealthQueryHandler = decorator.QueryHandler[FetchHealthQuery, *HealthResult]

	fetchHealthQueryHandler struct {
		aggregator ports.HealthAggregator
		startTime  time.Time
	}
)

func NewFetchHealthQueryHandler(
	aggregator ports.HealthAggregator,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) FetchHealthQueryHandler {
	return decorator.ApplyQueryDecorators[FetchHealthQuery, *HealthResult](
		fetchHealthQueryHandler{
			aggregator: aggregator,
			startTime:  time.Now(),
		},
		log,
		metricsClient,
		tracerProvider,
	)
}

// Execute runs a fresh aggregation on every call, results are never cached.
func (h fetchHealthQueryHandler) Execute(ctx context.Context, _ FetchHealthQuery) (*HealthResult, error) {
	return &HealthResult{
		Report: h.aggregator.Aggregate(ctx),
		Uptime: time.Since(h.startTime),
	}, nil
}
