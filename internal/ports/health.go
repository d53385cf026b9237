package ports

import (
	"context"

	"github.com/ramisettybhargavi/devsecops-backend/pkg/healthcheck"
)

// HealthAggregator produces a point in time health report across registered
// dependency probes.
type HealthAggregator interface {
	Aggregate(ctx context.Context) healthcheck.Report
}

// DatabaseHealthChecker defines the interface for database health checks.
type DatabaseHealthChecker interface {
	// Ping checks if the database connection is alive.
	Ping(ctx context.Context) error
}
