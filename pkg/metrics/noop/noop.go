// Package noop provides a metrics client that records nothing. It stands in
// for the real client in tests and when the metrics endpoint is disabled.
package noop

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
)

type MetricsClient struct{}

func NewMetricsClient() MetricsClient {
	return MetricsClient{}
}

func (c MetricsClient) Inc(_ context.Context, _ string, _ any, _ ...attribute.KeyValue) {}

// Handler answers 404 so a disabled scrape endpoint is indistinguishable from
// an absent one.
func (c MetricsClient) Handler() http.Handler {
	return http.NotFoundHandler()
}

func (c MetricsClient) Shutdown(_ context.Context) error {
	return nil
}
