package queries

import (
	"context"

	"github.com/ramisettybhargavi/devsecops-backend/internal/ports"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/decorator"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/healthcheck"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/logger"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/metrics"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	FetchObservabilityQuery struct{}

	// ObservabilityResult carries the aggregated report for the
	// observability backends only, the primary store is not included.
	ObservabilityResult struct {
		Report healthcheck.Report
	}

	FetchObservabilityQueryHandler = decorator.QueryHandler[FetchObservabilityQuery, *ObservabilityResult]

	fetchObservabilityQueryHandler struct {
		aggregator ports.HealthAggregator
	}
)

func NewFetchObservabilityQueryHandler(
	aggregator ports.HealthAggregator,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) FetchObservabilityQueryHandler {
	return decorator.ApplyQueryDecorators[FetchObservabilityQuery, *ObservabilityResult](
		fetchObservabilityQueryHandler{aggregator: aggregator},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h fetchObservabilityQueryHandler) Execute(ctx context.Context, _ FetchObservabilityQuery) (*ObservabilityResult, error) {
	return &ObservabilityResult{
		Report: h.aggregator.Aggregate(ctx),
	}, nil
}
