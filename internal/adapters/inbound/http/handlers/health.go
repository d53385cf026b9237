package handlers

import (
	"net/http"
	"time"

	"github.com/ramisettybhargavi/devsecops-backend/internal/config"
	"github.com/ramisettybhargavi/devsecops-backend/internal/usecases"
	"github.com/ramisettybhargavi/devsecops-backend/internal/usecases/queries"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/correlation"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/healthcheck"
)

const (
	databaseProbeName = "database"

	checkConnected    = "connected"
	checkDisconnected = "disconnected"
	checkRunning      = "running"
)

type (
	// HealthHandler serves the health and observability status endpoints.
	HealthHandler struct {
		app *usecases.Application
		cfg config.App
	}

	dependencyPayload struct {
		Healthy      bool     `json:"healthy"`
		ResponseTime *float64 `json:"response_time,omitempty"`
		Error        string   `json:"error,omitempty"`
		Details      string   `json:"details,omitempty"`
	}

	healthResponse struct {
		Status        string                       `json:"status"`
		Timestamp     time.Time                    `json:"timestamp"`
		Uptime        float64                      `json:"uptime"`
		Service       string                       `json:"service"`
		Version       string                       `json:"version"`
		Checks        map[string]string            `json:"checks"`
		Observability map[string]dependencyPayload `json:"observability"`
		TraceID       string                       `json:"trace_id,omitempty"`
	}

	observabilityResponse struct {
		Status        string                       `json:"status"`
		Timestamp     time.Time                    `json:"timestamp"`
		Observability map[string]dependencyPayload `json:"observability"`
		TraceID       string                       `json:"trace_id,omitempty"`
	}
)

func NewHealthHandler(app *usecases.Application, cfg config.App) *HealthHandler {
	return &HealthHandler{
		app: app,
		cfg: cfg,
	}
}

// HealthCheck reports the service health including the primary store and the
// observability backends. The body is always well formed, an unhealthy
// report only changes the status code.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.Queries.FetchHealth.Execute(r.Context(), queries.FetchHealthQuery{})
	if err != nil {
		writeError(w, r, err)

		return
	}

	report := result.Report

	checks := map[string]string{
		databaseProbeName: checkDisconnected,
		"application":     checkRunning,
	}

	if dependency, ok := report.Dependencies[databaseProbeName]; ok && dependency.Healthy {
		checks[databaseProbeName] = checkConnected
	}

	observability := make(map[string]dependencyPayload, len(report.Dependencies))
	for name, dependency := range report.Dependencies {
		if name == databaseProbeName {
			continue
		}

		observability[name] = toDependencyPayload(dependency)
	}

	httpStatus := http.StatusOK
	if report.Status == healthcheck.StatusUnhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status:        string(report.Status),
		Timestamp:     report.Timestamp,
		Uptime:        result.Uptime.Seconds(),
		Service:       h.cfg.ServiceName,
		Version:       h.cfg.ServiceVersion,
		Checks:        checks,
		Observability: observability,
		TraceID:       correlation.FromContext(r.Context()),
	})
}

// ObservabilityStatus reports on the observability backends alone, the
// primary store is not probed here.
func (h *HealthHandler) ObservabilityStatus(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.Queries.FetchObservability.Execute(r.Context(), queries.FetchObservabilityQuery{})
	if err != nil {
		writeError(w, r, err)

		return
	}

	report := result.Report

	observability := make(map[string]dependencyPayload, len(report.Dependencies))
	for name, dependency := range report.Dependencies {
		observability[name] = toDependencyPayload(dependency)
	}

	httpStatus := http.StatusOK
	if report.Status == healthcheck.StatusUnhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, observabilityResponse{
		Status:        string(report.Status),
		Timestamp:     report.Timestamp,
		Observability: observability,
		TraceID:       correlation.FromContext(r.Context()),
	})
}

// toDependencyPayload shapes one probe outcome. The response time is omitted
// entirely when the probe never completed, a zero there would read as an
// instant response.
func toDependencyPayload(dependency healthcheck.DependencyResult) dependencyPayload {
	payload := dependencyPayload{
		Healthy: dependency.Healthy,
		Error:   dependency.Error,
		Details: dependency.Detail,
	}

	if dependency.ResponseTime > 0 {
		seconds := dependency.ResponseTime.Seconds()
		payload.ResponseTime = &seconds
	}

	return payload
}
