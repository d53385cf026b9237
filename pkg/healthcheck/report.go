package healthcheck

import "time"

type (
	// Status is the rolled up health of the service and its dependencies.
	Status string

	// DependencyResult captures the outcome of a single probe run.
	// ResponseTime is zero when the probe never completed.
	DependencyResult struct {
		Healthy      bool
		ResponseTime time.Duration
		Detail       string
		Error        string
	}

	// Report is the outcome of one aggregation pass over all registered probes.
	Report struct {
		Status       Status
		Timestamp    time.Time
		Dependencies map[string]DependencyResult
	}
)

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)
