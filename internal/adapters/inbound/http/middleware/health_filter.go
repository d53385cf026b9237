package middleware

import (
	"context"
	"net/http"
	"strings"
)

// Probing endpoints are hit every few seconds by the poller dashboards and
// orchestration liveness checks, logging them by default only produces noise.
var defaultQuietEndpoints = []string{
	"/health",
	"/healthz",
	"/observability/status",
	"/metrics",
}

type HealthCheckFilter struct {
	quietEndpoints  []string
	logHealthChecks bool
}

func NewHealthCheckFilter(logHealthChecks bool) *HealthCheckFilter {
	return &HealthCheckFilter{
		quietEndpoints:  defaultQuietEndpoints,
		logHealthChecks: logHealthChecks,
	}
}

func (h *HealthCheckFilter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.logHealthChecks {
			next.ServeHTTP(w, r)

			return
		}

		if h.isQuietEndpoint(r.URL.Path) {
			ctx := context.WithValue(r.Context(), skipAccessLogKey, true)
			next.ServeHTTP(w, r.WithContext(ctx))

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *HealthCheckFilter) isQuietEndpoint(path string) bool {
	normalizedPath := strings.TrimSuffix(path, "/")

	for _, endpoint := range h.quietEndpoints {
		if normalizedPath == endpoint {
			return true
		}
	}

	return false
}
